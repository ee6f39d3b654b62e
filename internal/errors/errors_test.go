package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindMatchingWithErrorsIs(t *testing.T) {
	err := NotScanned("/repo")
	wrapped := fmt.Errorf("loading state: %w", err)

	assert.True(t, stderrors.Is(wrapped, New(KindNotScanned, "")))
	assert.False(t, stderrors.Is(wrapped, New(KindCorruptState, "")))
	assert.True(t, IsNotScanned(wrapped))
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := CorruptState(".reposcope/graph.json", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "graph.json")
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, KindFileSystem, "should vanish"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindGitUnavailable, KindOf(GitUnavailable("/repo", nil)))
	assert.Equal(t, KindConfig, KindOf(fmt.Errorf("outer: %w", Configf("bad key %q", "x"))))
	// Foreign errors default to the aggregate-failure kind.
	assert.Equal(t, KindAnalyzerFailure, KindOf(stderrors.New("plain")))
}

func TestRemediationCarried(t *testing.T) {
	err := NotScanned("/repo")
	require.NotEmpty(t, err.Remediation)
	assert.Contains(t, err.Remediation, "scan")
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "NOT_SCANNED", KindNotScanned.String())
	assert.Equal(t, "ANALYZER_FAILURE", KindAnalyzerFailure.String())
	assert.Equal(t, "UNKNOWN", Kind(99).String())
}

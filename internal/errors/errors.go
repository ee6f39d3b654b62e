package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind categorizes errors the way callers need to branch on them.
type Kind int

const (
	// KindNotScanned - no knowledge graph exists for this repository yet.
	// User-actionable: run a scan first.
	KindNotScanned Kind = iota
	// KindGitUnavailable - the repository has no usable git history.
	// Analyzers degrade to empty results instead of failing.
	KindGitUnavailable
	// KindCorruptState - a persisted graph or snapshot failed to parse.
	// Handled per-record: the bad record is skipped, loading continues.
	KindCorruptState
	// KindAnalyzerFailure - one analyzer inside an aggregate report failed.
	// The category is reported unavailable; sibling analyzers still run.
	KindAnalyzerFailure
	// KindConfig - missing or invalid configuration.
	KindConfig
	// KindFileSystem - state-directory I/O failed.
	KindFileSystem
)

func (k Kind) String() string {
	switch k {
	case KindNotScanned:
		return "NOT_SCANNED"
	case KindGitUnavailable:
		return "GIT_UNAVAILABLE"
	case KindCorruptState:
		return "CORRUPT_STATE"
	case KindAnalyzerFailure:
		return "ANALYZER_FAILURE"
	case KindConfig:
		return "CONFIG"
	case KindFileSystem:
		return "FILESYSTEM"
	default:
		return "UNKNOWN"
	}
}

// Error is a structured error carrying a kind and optional remediation text.
type Error struct {
	Kind        Kind
	Message     string
	Remediation string
	Cause       error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind so callers can use errors.Is with sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a structured error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap wraps an existing error with a kind and message.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// NotScanned reports a missing knowledge graph with remediation text.
func NotScanned(rootDir string) *Error {
	return &Error{
		Kind:        KindNotScanned,
		Message:     fmt.Sprintf("no knowledge graph found for %s", rootDir),
		Remediation: "run a scan first to build the knowledge graph",
	}
}

// GitUnavailable reports that history-dependent metrics cannot be computed.
func GitUnavailable(repoPath string, cause error) *Error {
	return &Error{
		Kind:        KindGitUnavailable,
		Message:     fmt.Sprintf("%s is not a git repository", repoPath),
		Remediation: "history-dependent metrics are unavailable without git history",
		Cause:       cause,
	}
}

// CorruptState reports a single unparseable state file.
func CorruptState(path string, cause error) *Error {
	return &Error{
		Kind:    KindCorruptState,
		Message: fmt.Sprintf("state file %s is corrupt", path),
		Cause:   cause,
	}
}

// AnalyzerFailure reports a failed analyzer category inside a report.
func AnalyzerFailure(category string, cause error) *Error {
	return &Error{
		Kind:    KindAnalyzerFailure,
		Message: fmt.Sprintf("analyzer %q failed", category),
		Cause:   cause,
	}
}

// Configf creates a configuration error with formatting.
func Configf(format string, args ...any) *Error {
	return New(KindConfig, fmt.Sprintf(format, args...))
}

// FileSystem wraps a state-directory I/O error.
func FileSystem(err error, message string) *Error {
	return Wrap(err, KindFileSystem, message)
}

// KindOf returns the kind of an error anywhere in err's chain, or
// KindAnalyzerFailure for unstructured errors surfaced from analyzer
// internals.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindAnalyzerFailure
}

// IsNotScanned reports whether err means "no graph - run scan first".
func IsNotScanned(err error) bool {
	var e *Error
	return stderrors.As(err, &e) && e.Kind == KindNotScanned
}

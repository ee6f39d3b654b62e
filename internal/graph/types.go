package graph

import (
	"sort"
	"time"
)

// NodeKind classifies a graph node.
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindFunction  NodeKind = "function"
	KindClass     NodeKind = "class"
	KindInterface NodeKind = "interface"
	KindType      NodeKind = "type"
	KindEnum      NodeKind = "enum"
	KindVariable  NodeKind = "variable"
)

// EdgeType classifies a relationship between two nodes.
type EdgeType string

const (
	EdgeImports  EdgeType = "imports"
	EdgeExports  EdgeType = "exports"
	EdgeContains EdgeType = "contains"
)

// Node is one file or symbol in the knowledge graph. IDs are stable across
// scans (keyed by file path plus symbol path) so history can attach to them.
type Node struct {
	ID                string     `json:"id"`
	Kind              NodeKind   `json:"kind"`
	Name              string     `json:"name"`
	FilePath          string     `json:"filePath"`
	LineStart         int        `json:"lineStart"`
	LineEnd           int        `json:"lineEnd"`
	Complexity        *int       `json:"complexity,omitempty"` // nil means not measured
	Exported          bool       `json:"exported"`
	Contributors      []string   `json:"contributors,omitempty"` // most-significant-first
	LastModified      *time.Time `json:"lastModified,omitempty"`
	ModificationCount int        `json:"modificationCount"`
}

// Edge is a directed relationship between two nodes. Duplicate edges are
// tolerated in storage; analyzers that care dedupe by (source,target,type).
type Edge struct {
	Source string   `json:"source"`
	Target string   `json:"target"`
	Type   EdgeType `json:"type"`
}

// Metadata describes the scan that produced the graph.
type Metadata struct {
	RootDir        string    `json:"rootDir"`
	ScannedAt      time.Time `json:"scannedAt"`
	FileCount      int       `json:"fileCount"`
	TotalLines     int       `json:"totalLines"`
	ScanDurationMS int64     `json:"scanDurationMs"`
}

// KnowledgeGraph is the persisted node/edge model of files and symbols.
// It is owned by the invocation that loaded it and read-only to analyzers.
type KnowledgeGraph struct {
	Nodes    map[string]*Node `json:"nodes"`
	Edges    []Edge           `json:"edges"`
	Metadata Metadata         `json:"metadata"`
}

// NewKnowledgeGraph creates an empty graph.
func NewKnowledgeGraph() *KnowledgeGraph {
	return &KnowledgeGraph{
		Nodes: make(map[string]*Node),
		Edges: make([]Edge, 0),
	}
}

// FileNodes returns all file-kind nodes.
func (g *KnowledgeGraph) FileNodes() []*Node {
	var files []*Node
	for _, n := range g.Nodes {
		if n.Kind == KindFile {
			files = append(files, n)
		}
	}
	return files
}

// FilePaths returns the sorted-unique set of file paths appearing on any node.
func (g *KnowledgeGraph) FilePaths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, n := range g.Nodes {
		if n.FilePath != "" && !seen[n.FilePath] {
			seen[n.FilePath] = true
			paths = append(paths, n.FilePath)
		}
	}
	sort.Strings(paths)
	return paths
}

// NodesInFile returns all nodes whose FilePath matches the given path.
func (g *KnowledgeGraph) NodesInFile(path string) []*Node {
	var nodes []*Node
	for _, n := range g.Nodes {
		if n.FilePath == path {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// MaxComplexityInFile returns the highest measured complexity among the
// file's nodes, or 0 when nothing in the file was measured.
func (g *KnowledgeGraph) MaxComplexityInFile(path string) int {
	maxC := 0
	for _, n := range g.Nodes {
		if n.FilePath == path && n.Complexity != nil && *n.Complexity > maxC {
			maxC = *n.Complexity
		}
	}
	return maxC
}

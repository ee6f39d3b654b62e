package graph

import (
	"testing"
)

// fileGraph builds a graph of file nodes with imports edges between them.
func fileGraph(edges [][2]string) *KnowledgeGraph {
	g := NewKnowledgeGraph()
	add := func(path string) {
		if _, ok := g.Nodes[path]; !ok {
			g.Nodes[path] = &Node{ID: path, Kind: KindFile, Name: path, FilePath: path, LineStart: 1, LineEnd: 1}
		}
	}
	for _, e := range edges {
		add(e[0])
		add(e[1])
		g.Edges = append(g.Edges, Edge{Source: e[0], Target: e[1], Type: EdgeImports})
	}
	return g
}

func TestImportAdjacencyDedupesAndDropsSelfImports(t *testing.T) {
	g := fileGraph([][2]string{
		{"a.go", "b.go"},
		{"a.go", "b.go"}, // duplicate
		{"a.go", "a.go"}, // self-import
	})

	adj := g.ImportAdjacency()
	if len(adj["a.go"]) != 1 || adj["a.go"][0] != "b.go" {
		t.Fatalf("expected a.go -> [b.go], got %v", adj["a.go"])
	}
}

func TestImportAdjacencyResolvesSymbolEdgesToFiles(t *testing.T) {
	g := NewKnowledgeGraph()
	g.Nodes["a.go"] = &Node{ID: "a.go", Kind: KindFile, FilePath: "a.go"}
	g.Nodes["b.go"] = &Node{ID: "b.go", Kind: KindFile, FilePath: "b.go"}
	g.Nodes["b.go:Helper"] = &Node{ID: "b.go:Helper", Kind: KindFunction, FilePath: "b.go"}
	g.Edges = append(g.Edges, Edge{Source: "a.go", Target: "b.go:Helper", Type: EdgeImports})

	adj := g.ImportAdjacency()
	if len(adj["a.go"]) != 1 || adj["a.go"][0] != "b.go" {
		t.Fatalf("symbol import should resolve to owning file, got %v", adj["a.go"])
	}
}

func TestImportAdjacencyIgnoresOtherEdgeTypes(t *testing.T) {
	g := NewKnowledgeGraph()
	g.Nodes["a.go"] = &Node{ID: "a.go", Kind: KindFile, FilePath: "a.go"}
	g.Nodes["b.go"] = &Node{ID: "b.go", Kind: KindFile, FilePath: "b.go"}
	g.Edges = append(g.Edges, Edge{Source: "a.go", Target: "b.go", Type: EdgeContains})

	if adj := g.ImportAdjacency(); len(adj) != 0 {
		t.Fatalf("contains edges must not appear in import adjacency, got %v", adj)
	}
}

func TestTransitiveImporters(t *testing.T) {
	// c -> b -> a, d -> a, e isolated
	g := fileGraph([][2]string{
		{"c.go", "b.go"},
		{"b.go", "a.go"},
		{"d.go", "a.go"},
	})
	g.Nodes["e.go"] = &Node{ID: "e.go", Kind: KindFile, FilePath: "e.go"}

	rev := g.ReverseImportAdjacency()
	importers := g.TransitiveImporters("a.go", rev)

	if len(importers) != 3 {
		t.Fatalf("expected 3 transitive importers of a.go, got %v", importers)
	}
	want := map[string]bool{"b.go": true, "c.go": true, "d.go": true}
	for _, f := range importers {
		if !want[f] {
			t.Errorf("unexpected importer %s", f)
		}
	}

	if got := g.TransitiveImporters("e.go", rev); len(got) != 0 {
		t.Errorf("isolated file should have no importers, got %v", got)
	}
}

func TestHasImportEdgeEitherDirection(t *testing.T) {
	g := fileGraph([][2]string{{"a.go", "b.go"}})

	if !g.HasImportEdge("a.go", "b.go") {
		t.Error("expected edge a.go -> b.go to be found")
	}
	if !g.HasImportEdge("b.go", "a.go") {
		t.Error("expected reversed lookup to find the same edge")
	}
	if g.HasImportEdge("a.go", "c.go") {
		t.Error("expected no edge to unknown file")
	}
}

func TestFilePathsSortedUnique(t *testing.T) {
	g := NewKnowledgeGraph()
	g.Nodes["z.go"] = &Node{ID: "z.go", Kind: KindFile, FilePath: "z.go"}
	g.Nodes["a.go"] = &Node{ID: "a.go", Kind: KindFile, FilePath: "a.go"}
	g.Nodes["a.go:Fn"] = &Node{ID: "a.go:Fn", Kind: KindFunction, FilePath: "a.go"}
	g.Nodes["m.go"] = &Node{ID: "m.go", Kind: KindFile, FilePath: "m.go"}

	paths := g.FilePaths()
	want := []string{"a.go", "m.go", "z.go"}
	if len(paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, paths)
		}
	}
}

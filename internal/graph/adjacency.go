package graph

import "sort"

// filePathOf resolves a node id to the file path that owns it. Edges may
// reference symbol nodes; cycle and impact analysis work at file level.
func (g *KnowledgeGraph) filePathOf(nodeID string) string {
	if n, ok := g.Nodes[nodeID]; ok {
		return n.FilePath
	}
	// Externally-resolved ids carry no node; treat the id itself as a path
	// so unresolved imports still participate in adjacency.
	return nodeID
}

// ImportAdjacency builds a file-level directed adjacency list from imports
// edges. Duplicate edges collapse to one, self-imports are dropped.
func (g *KnowledgeGraph) ImportAdjacency() map[string][]string {
	seen := make(map[string]map[string]bool)
	for _, e := range g.Edges {
		if e.Type != EdgeImports {
			continue
		}
		src := g.filePathOf(e.Source)
		dst := g.filePathOf(e.Target)
		if src == "" || dst == "" || src == dst {
			continue
		}
		if seen[src] == nil {
			seen[src] = make(map[string]bool)
		}
		seen[src][dst] = true
	}

	adj := make(map[string][]string, len(seen))
	for src, targets := range seen {
		for dst := range targets {
			adj[src] = append(adj[src], dst)
		}
		sort.Strings(adj[src])
	}
	return adj
}

// ReverseImportAdjacency is ImportAdjacency with every edge flipped. Used
// for "who depends on this file" reachability.
func (g *KnowledgeGraph) ReverseImportAdjacency() map[string][]string {
	adj := g.ImportAdjacency()
	rev := make(map[string][]string)
	for src, targets := range adj {
		for _, dst := range targets {
			rev[dst] = append(rev[dst], src)
		}
	}
	for k := range rev {
		sort.Strings(rev[k])
	}
	return rev
}

// HasImportEdge reports whether a direct file-level imports edge exists in
// either direction between the two paths.
func (g *KnowledgeGraph) HasImportEdge(pathA, pathB string) bool {
	for _, e := range g.Edges {
		if e.Type != EdgeImports {
			continue
		}
		src := g.filePathOf(e.Source)
		dst := g.filePathOf(e.Target)
		if (src == pathA && dst == pathB) || (src == pathB && dst == pathA) {
			return true
		}
	}
	return false
}

// TransitiveImporters returns every file that can reach target by following
// imports edges, i.e. the blast radius of changing target. BFS over the
// reversed adjacency; target itself is excluded.
func (g *KnowledgeGraph) TransitiveImporters(target string, rev map[string][]string) []string {
	visited := map[string]bool{target: true}
	queue := []string{target}
	var importers []string

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, importer := range rev[current] {
			if visited[importer] {
				continue
			}
			visited[importer] = true
			importers = append(importers, importer)
			queue = append(queue, importer)
		}
	}

	sort.Strings(importers)
	return importers
}

package resolver

import (
	"arch4u/internal/parser"
)

// TypeGraph answers supertype queries for fully qualified type names. The
// in-memory implementation is fed from parsed units and from hierarchy edges
// declared in configuration; a classpath-backed implementation can be
// plugged in without touching the engine.
type TypeGraph interface {
	// Supertypes returns the direct supertypes of fqn, empty when unknown.
	Supertypes(fqn string) []string
}

type MemoryTypeGraph struct {
	supers map[string][]string
}

func NewMemoryTypeGraph() *MemoryTypeGraph {
	return &MemoryTypeGraph{supers: make(map[string][]string)}
}

func (g *MemoryTypeGraph) AddEdge(sub, super string) {
	if sub == "" || super == "" || sub == super {
		return
	}
	for _, existing := range g.supers[sub] {
		if existing == super {
			return
		}
	}
	g.supers[sub] = append(g.supers[sub], super)
}

func (g *MemoryTypeGraph) Supertypes(fqn string) []string {
	edges := g.supers[fqn]
	if len(edges) == 0 {
		return nil
	}
	out := make([]string, len(edges))
	copy(out, edges)
	return out
}

// AddUnits records extends/implements edges from parsed units. Supertype
// names are qualified in the declaring unit's context; names that cannot be
// qualified contribute no edge.
func (g *MemoryTypeGraph) AddUnits(units []*parser.CompilationUnit) {
	for _, unit := range units {
		if unit == nil {
			continue
		}
		for _, decl := range unit.Types {
			for _, super := range decl.Supers {
				fqn := qualifyName(unit, super)
				if fqn == "" {
					continue
				}
				g.AddEdge(decl.FullName, fqn)
			}
		}
	}
}

package resolver

import (
	"testing"

	"arch4u/internal/parser"
)

const mapperFQN = "com.fasterxml.jackson.databind.ObjectMapper"

func unitWithDecl(typeName string, imports ...parser.Import) (*parser.CompilationUnit, *parser.VariableDecl) {
	decl := &parser.VariableDecl{
		Name: "mapper",
		Type: parser.TypeReference{Raw: typeName, Name: typeName},
	}
	unit := &parser.CompilationUnit{
		Path:        "Service.java",
		Language:    "java",
		PackageName: "com.example",
		Imports:     imports,
		Variables:   []*parser.VariableDecl{decl},
	}
	return unit, decl
}

func TestIsExactlyType(t *testing.T) {
	res := New(nil)

	unit, decl := unitWithDecl("ObjectMapper", parser.Import{Name: mapperFQN})
	if !res.IsExactlyType(unit, decl, mapperFQN) {
		t.Error("imported simple name should resolve to the imported FQN")
	}
	if res.IsExactlyType(unit, decl, "com.other.ObjectMapper") {
		t.Error("exact match must compare full names")
	}
}

func TestQualifyFailsClosed(t *testing.T) {
	res := New(nil)

	// No import brings ObjectMapper into scope: unresolved, so no match.
	unit, decl := unitWithDecl("ObjectMapper")
	if res.IsExactlyType(unit, decl, mapperFQN) {
		t.Error("unresolved type must not match")
	}
	if res.IsTypeOrSubtype(unit, decl, mapperFQN) {
		t.Error("unresolved type must not match as subtype either")
	}

	// Wildcard imports are not guessed at.
	unit, decl = unitWithDecl("ObjectMapper", parser.Import{Name: "com.fasterxml.jackson.databind", Wildcard: true})
	if res.IsExactlyType(unit, decl, mapperFQN) {
		t.Error("wildcard import must not qualify a type")
	}
}

func TestQualifyJavaLang(t *testing.T) {
	res := New(nil)
	unit, decl := unitWithDecl("String")
	if !res.IsExactlyType(unit, decl, "java.lang.String") {
		t.Error("java.lang types are in scope without an import")
	}
}

func TestQualifyLocalType(t *testing.T) {
	res := New(nil)
	unit, decl := unitWithDecl("Helper")
	unit.Types = []parser.TypeDecl{{Name: "Helper", FullName: "com.example.Helper"}}
	if !res.IsExactlyType(unit, decl, "com.example.Helper") {
		t.Error("types declared in the unit should qualify against its package")
	}
}

func TestIsTypeOrSubtype(t *testing.T) {
	graph := NewMemoryTypeGraph()
	graph.AddEdge("com.example.CustomObjectMapper", mapperFQN)
	res := New(graph)

	unit, decl := unitWithDecl("CustomObjectMapper", parser.Import{Name: "com.example.CustomObjectMapper"})

	if res.IsExactlyType(unit, decl, mapperFQN) {
		t.Error("subtype must not satisfy the exact predicate")
	}
	if !res.IsTypeOrSubtype(unit, decl, mapperFQN) {
		t.Error("direct subtype should satisfy the subtype predicate")
	}
	if !res.IsTypeOrSubtype(unit, decl, "com.example.CustomObjectMapper") {
		t.Error("a type is a subtype of itself")
	}
}

func TestIsTypeOrSubtypeTransitive(t *testing.T) {
	graph := NewMemoryTypeGraph()
	graph.AddEdge("a.B", "a.A")
	graph.AddEdge("a.C", "a.B")
	res := New(graph)

	unit, decl := unitWithDecl("C", parser.Import{Name: "a.C"})
	if !res.IsTypeOrSubtype(unit, decl, "a.A") {
		t.Error("subtype check must be transitive")
	}
	if res.IsTypeOrSubtype(unit, decl, "a.D") {
		t.Error("unrelated type must not match")
	}
}

func TestIsTypeOrSubtypeCycleSafe(t *testing.T) {
	graph := NewMemoryTypeGraph()
	graph.AddEdge("a.B", "a.A")
	graph.AddEdge("a.A", "a.B")
	res := New(graph)

	unit, decl := unitWithDecl("B", parser.Import{Name: "a.B"})
	// Must terminate despite the (malformed) cycle.
	if res.IsTypeOrSubtype(unit, decl, "a.X") {
		t.Error("unrelated type matched through a cycle")
	}
	if !res.IsTypeOrSubtype(unit, decl, "a.A") {
		t.Error("supertype lookup failed in cyclic graph")
	}
}

func TestAddUnitsQualifiesSupers(t *testing.T) {
	units := []*parser.CompilationUnit{
		{
			PackageName: "com.example",
			Imports:     []parser.Import{{Name: mapperFQN}},
			Types: []parser.TypeDecl{
				{Name: "CustomObjectMapper", FullName: "com.example.CustomObjectMapper", Supers: []string{"ObjectMapper", "Unknowable"}},
			},
		},
	}
	graph := NewMemoryTypeGraph()
	graph.AddUnits(units)

	supers := graph.Supertypes("com.example.CustomObjectMapper")
	if len(supers) != 1 || supers[0] != mapperFQN {
		t.Errorf("expected only the resolvable supertype edge, got %v", supers)
	}
}

func TestNilInputs(t *testing.T) {
	res := New(nil)
	if res.IsExactlyType(nil, nil, "x.Y") {
		t.Error("nil inputs must not match")
	}
	unit, decl := unitWithDecl("String")
	if res.IsExactlyType(unit, decl, "") {
		t.Error("empty target must not match")
	}
}

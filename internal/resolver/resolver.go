package resolver

import (
	"strings"

	"arch4u/internal/parser"
	"arch4u/internal/shared/util"
)

// Resolver decides whether a declared variable's type satisfies a target
// type predicate. Every unresolved question is answered "no": without
// symbol information a match can never be justified, so none is reported.
type Resolver struct {
	graph TypeGraph
}

func New(graph TypeGraph) *Resolver {
	if graph == nil {
		graph = NewMemoryTypeGraph()
	}
	return &Resolver{graph: graph}
}

// IsExactlyType reports whether decl's type resolves to exactly target.
func (r *Resolver) IsExactlyType(unit *parser.CompilationUnit, decl *parser.VariableDecl, target string) bool {
	if unit == nil || decl == nil || target == "" {
		return false
	}
	fqn := qualifyName(unit, decl.Type.Name)
	return fqn != "" && fqn == target
}

// IsTypeOrSubtype reports whether decl's type resolves to target or to a
// type that transitively extends/implements it.
func (r *Resolver) IsTypeOrSubtype(unit *parser.CompilationUnit, decl *parser.VariableDecl, target string) bool {
	if unit == nil || decl == nil || target == "" {
		return false
	}
	fqn := qualifyName(unit, decl.Type.Name)
	if fqn == "" {
		return false
	}
	if fqn == target {
		return true
	}

	seen := map[string]bool{fqn: true}
	queue := r.graph.Supertypes(fqn)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == target {
			return true
		}
		if seen[current] {
			continue
		}
		seen[current] = true
		queue = append(queue, r.graph.Supertypes(current)...)
	}
	return false
}

// javaLangTypes are the java.lang names that are in scope without an import.
var javaLangTypes = map[string]bool{
	"Object": true, "String": true, "StringBuilder": true, "StringBuffer": true,
	"Integer": true, "Long": true, "Short": true, "Byte": true, "Double": true,
	"Float": true, "Boolean": true, "Character": true, "Number": true,
	"Math": true, "System": true, "Thread": true, "Runnable": true,
	"Class": true, "ClassLoader": true, "Iterable": true, "Comparable": true,
	"CharSequence": true, "Throwable": true, "Exception": true, "Error": true,
	"RuntimeException": true, "IllegalArgumentException": true,
	"IllegalStateException": true, "NullPointerException": true,
	"UnsupportedOperationException": true, "Void": true, "Enum": true,
	"Record": true, "Process": true, "ProcessBuilder": true, "Runtime": true,
}

// qualifyName resolves a simple type name to a fully qualified one using the
// unit's explicit imports, its own type declarations and java.lang defaults.
// Wildcard imports are deliberately not guessed at: a wrong qualification
// could manufacture a violation, while an empty result only suppresses one.
func qualifyName(unit *parser.CompilationUnit, name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if strings.Contains(name, ".") {
		return name
	}

	for _, imp := range unit.Imports {
		if imp.Wildcard || imp.Static {
			continue
		}
		if util.SimpleName(imp.Name) == name {
			return imp.Name
		}
	}

	for _, decl := range unit.Types {
		if decl.Name == name {
			return decl.FullName
		}
	}

	if javaLangTypes[name] {
		return "java.lang." + name
	}

	return ""
}

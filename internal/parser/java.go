package parser

import (
	"sort"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// JavaExtractor builds a CompilationUnit from a tree-sitter Java syntax tree.
// It records every variable declaration (fields, locals, parameters, catch
// and for-each variables) and binds each later occurrence of a name to the
// innermost declaration in scope, so shadowed outer variables never collect
// usages that belong to an inner declaration.
type JavaExtractor struct{}

func (e *JavaExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*CompilationUnit, error) {
	unit := &CompilationUnit{
		Path:     filePath,
		Language: "java",
		ParsedAt: time.Now(),
	}
	ctx := &ExtractionContext{Source: source, Unit: unit}

	e.walk(root, ctx, NewScope(nil))

	// Fields are registered before the body walk so that members above them
	// still bind; restore source order for deterministic reporting.
	sort.SliceStable(unit.Variables, func(i, j int) bool {
		a, b := unit.Variables[i].Location, unit.Variables[j].Location
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})

	return unit, nil
}

func (e *JavaExtractor) walk(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "package_declaration":
		e.extractPackage(node, ctx)
		return
	case "import_declaration":
		e.extractImport(node, ctx)
		return
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		e.extractTypeDecl(node, ctx, scope)
		return
	case "method_declaration", "constructor_declaration", "static_initializer":
		inner := NewScope(scope)
		e.walkChildren(node, ctx, inner)
		return
	case "block", "for_statement", "catch_clause", "switch_block_statement_group":
		inner := NewScope(scope)
		e.walkChildren(node, ctx, inner)
		return
	case "enhanced_for_statement":
		e.extractEnhancedFor(node, ctx, scope)
		return
	case "lambda_expression":
		e.extractLambda(node, ctx, scope)
		return
	case "local_variable_declaration":
		e.extractVariables(node, ctx, scope, KindLocal)
		return
	case "formal_parameter":
		e.extractParameter(node, ctx, scope)
		return
	case "spread_parameter":
		e.extractSpreadParameter(node, ctx, scope)
		return
	case "catch_formal_parameter":
		e.extractCatchParameter(node, ctx, scope)
		return
	case "identifier":
		e.recordUsage(node, ctx, scope)
		return
	}

	e.walkChildren(node, ctx, scope)
}

func (e *JavaExtractor) walkChildren(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		e.walk(node.Child(i), ctx, scope)
	}
}

func (e *JavaExtractor) extractPackage(node *sitter.Node, ctx *ExtractionContext) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
			ctx.Unit.PackageName = ctx.Text(child)
		}
	}
}

func (e *JavaExtractor) extractImport(node *sitter.Node, ctx *ExtractionContext) {
	imp := Import{Location: ctx.Location(node)}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "static":
			imp.Static = true
		case "asterisk":
			imp.Wildcard = true
		case "scoped_identifier", "identifier":
			imp.Name = ctx.Text(child)
		}
	}
	if imp.Name == "" {
		return
	}
	ctx.Unit.Imports = append(ctx.Unit.Imports, imp)
}

func (e *JavaExtractor) extractTypeDecl(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := ctx.Text(nameNode)

	decl := TypeDecl{
		Name:     name,
		FullName: qualifyInPackage(ctx.Unit.PackageName, name),
		Kind:     typeKindOf(node.Kind()),
		Location: ctx.Location(node),
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "superclass", "super_interfaces", "extends_interfaces":
			decl.Supers = append(decl.Supers, collectSuperNames(child, ctx)...)
		}
	}
	ctx.Unit.Types = append(ctx.Unit.Types, decl)

	body := node.ChildByFieldName("body")
	bodyScope := NewScope(scope)

	// Record components behave like final fields of the record.
	if params := node.ChildByFieldName("parameters"); params != nil {
		e.walkChildren(params, ctx, bodyScope)
	}

	if body == nil {
		return
	}

	// Fields are visible to all members regardless of declaration order, so
	// declare them before walking any member body.
	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() == "field_declaration" {
			e.declareVariables(child, ctx, bodyScope, KindField)
		}
	}

	for i := uint(0); i < body.ChildCount(); i++ {
		child := body.Child(i)
		if child.Kind() == "field_declaration" {
			e.walkInitializers(child, ctx, bodyScope)
			continue
		}
		e.walk(child, ctx, bodyScope)
	}
}

func collectSuperNames(node *sitter.Node, ctx *ExtractionContext) []string {
	var names []string
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Kind() {
		case "type_identifier", "scoped_type_identifier":
			names = append(names, eraseTypeName(ctx.Text(n)))
			return
		case "generic_type":
			names = append(names, eraseTypeName(ctx.Text(n)))
			return
		}
		for i := uint(0); i < n.ChildCount(); i++ {
			visit(n.Child(i))
		}
	}
	visit(node)
	return names
}

func typeKindOf(nodeKind string) TypeKind {
	switch nodeKind {
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	case "record_declaration":
		return KindRecord
	default:
		return KindClass
	}
}

// extractVariables handles a declaration statement: initializers are walked
// before the name is declared, since a local cannot reference itself.
func (e *JavaExtractor) extractVariables(node *sitter.Node, ctx *ExtractionContext, scope *Scope, kind VariableKind) {
	typeRef := e.typeReference(node.ChildByFieldName("type"), ctx)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "variable_declarator" {
			continue
		}
		if value := child.ChildByFieldName("value"); value != nil {
			e.walk(value, ctx, scope)
		}
		e.declareOne(child, typeRef, ctx, scope, kind)
	}
}

// declareVariables registers declarators without touching their initializers.
func (e *JavaExtractor) declareVariables(node *sitter.Node, ctx *ExtractionContext, scope *Scope, kind VariableKind) {
	typeRef := e.typeReference(node.ChildByFieldName("type"), ctx)

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "variable_declarator" {
			continue
		}
		e.declareOne(child, typeRef, ctx, scope, kind)
	}
}

func (e *JavaExtractor) walkInitializers(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() != "variable_declarator" {
			continue
		}
		if value := child.ChildByFieldName("value"); value != nil {
			e.walk(value, ctx, scope)
		}
	}
}

func (e *JavaExtractor) declareOne(declarator *sitter.Node, typeRef TypeReference, ctx *ExtractionContext, scope *Scope, kind VariableKind) {
	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return
	}
	decl := &VariableDecl{
		Name:     ctx.Text(nameNode),
		Type:     typeRef,
		Kind:     kind,
		Location: ctx.Location(nameNode),
	}
	scope.Declare(decl)
	ctx.Unit.Variables = append(ctx.Unit.Variables, decl)
}

func (e *JavaExtractor) extractParameter(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || nameNode.Kind() != "identifier" {
		return
	}
	decl := &VariableDecl{
		Name:     ctx.Text(nameNode),
		Type:     e.typeReference(node.ChildByFieldName("type"), ctx),
		Kind:     KindParameter,
		Location: ctx.Location(nameNode),
	}
	scope.Declare(decl)
	ctx.Unit.Variables = append(ctx.Unit.Variables, decl)
}

func (e *JavaExtractor) extractSpreadParameter(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	// Varargs: type child + variable_declarator child.
	var typeRef TypeReference
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "type_identifier", "scoped_type_identifier", "generic_type", "array_type":
			typeRef = e.typeReference(child, ctx)
		case "variable_declarator":
			e.declareOne(child, typeRef, ctx, scope, KindParameter)
		}
	}
}

func (e *JavaExtractor) extractCatchParameter(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	var typeRef TypeReference
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "catch_type":
			// Multi-catch keeps only the first alternative; the rule engine
			// fails closed on the rest anyway.
			typeRef = TypeReference{Raw: ctx.Text(child), Name: eraseTypeName(firstAlternative(ctx.Text(child)))}
		case "identifier":
			decl := &VariableDecl{
				Name:     ctx.Text(child),
				Type:     typeRef,
				Kind:     KindCatchParam,
				Location: ctx.Location(child),
			}
			scope.Declare(decl)
			ctx.Unit.Variables = append(ctx.Unit.Variables, decl)
		}
	}
}

func (e *JavaExtractor) extractEnhancedFor(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	inner := NewScope(scope)

	// The iterable expression cannot reference the loop variable.
	if value := node.ChildByFieldName("value"); value != nil {
		e.walk(value, ctx, inner)
	}

	nameNode := node.ChildByFieldName("name")
	if nameNode != nil && nameNode.Kind() == "identifier" {
		decl := &VariableDecl{
			Name:     ctx.Text(nameNode),
			Type:     e.typeReference(node.ChildByFieldName("type"), ctx),
			Kind:     KindForVariable,
			Location: ctx.Location(nameNode),
		}
		inner.Declare(decl)
		ctx.Unit.Variables = append(ctx.Unit.Variables, decl)
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.walk(body, ctx, inner)
	}
}

// extractLambda declares lambda parameters with an unknown type: the type
// resolver cannot justify a match for them, but they still shadow outer
// declarations with the same name.
func (e *JavaExtractor) extractLambda(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	inner := NewScope(scope)

	if params := node.ChildByFieldName("parameters"); params != nil {
		switch params.Kind() {
		case "identifier":
			e.declareInferred(params, ctx, inner)
		case "inferred_parameters":
			for i := uint(0); i < params.ChildCount(); i++ {
				child := params.Child(i)
				if child.Kind() == "identifier" {
					e.declareInferred(child, ctx, inner)
				}
			}
		default:
			e.walk(params, ctx, inner)
		}
	}

	if body := node.ChildByFieldName("body"); body != nil {
		e.walk(body, ctx, inner)
	}
}

func (e *JavaExtractor) declareInferred(nameNode *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	decl := &VariableDecl{
		Name:     ctx.Text(nameNode),
		Kind:     KindParameter,
		Location: ctx.Location(nameNode),
	}
	scope.Declare(decl)
	ctx.Unit.Variables = append(ctx.Unit.Variables, decl)
}

// recordUsage classifies an identifier occurrence and, when it refers to a
// declared variable, appends a Usage to that declaration. An identifier that
// is itself a declared name, a method name or a member name is not a usage.
func (e *JavaExtractor) recordUsage(node *sitter.Node, ctx *ExtractionContext, scope *Scope) {
	parent := node.Parent()
	if parent == nil {
		return
	}

	invoked := ""
	switch parent.Kind() {
	case "method_invocation":
		if sameNode(parent.ChildByFieldName("name"), node) {
			return
		}
		if sameNode(parent.ChildByFieldName("object"), node) {
			invoked = ctx.Text(parent.ChildByFieldName("name"))
		}
	case "field_access":
		if sameNode(parent.ChildByFieldName("field"), node) {
			obj := parent.ChildByFieldName("object")
			if obj == nil || obj.Kind() != "this" {
				return
			}
			// this.x refers to the field x; when this.x qualifies a call,
			// the call is charged to the field's declaration.
			if gp := parent.Parent(); gp != nil && gp.Kind() == "method_invocation" && sameNode(gp.ChildByFieldName("object"), parent) {
				invoked = ctx.Text(gp.ChildByFieldName("name"))
			}
		}
	case "variable_declarator", "formal_parameter", "enhanced_for_statement",
		"method_declaration", "constructor_declaration", "class_declaration",
		"interface_declaration", "enum_declaration", "record_declaration",
		"annotation_type_declaration":
		if sameNode(parent.ChildByFieldName("name"), node) {
			return
		}
	case "labeled_statement", "break_statement", "continue_statement",
		"marker_annotation", "annotation", "element_value_pair":
		return
	}

	decl := scope.Lookup(ctx.Text(node))
	if decl == nil {
		return
	}
	decl.Usages = append(decl.Usages, Usage{
		Location:      ctx.Location(node),
		InvokedMethod: invoked,
	})
}

func (e *JavaExtractor) typeReference(typeNode *sitter.Node, ctx *ExtractionContext) TypeReference {
	if typeNode == nil {
		return TypeReference{}
	}
	raw := ctx.Text(typeNode)
	name := eraseTypeName(raw)
	if name == "var" {
		// Inferred locals are out of reach without full type inference.
		name = ""
	}
	return TypeReference{Raw: raw, Name: name}
}

func qualifyInPackage(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func firstAlternative(catchType string) string {
	parts := strings.Split(catchType, "|")
	return strings.TrimSpace(parts[0])
}

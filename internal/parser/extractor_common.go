package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ExtractionContext carries shared state/helpers used during one extraction.
type ExtractionContext struct {
	Source []byte
	Unit   *CompilationUnit
}

func (c *ExtractionContext) Text(node *sitter.Node) string {
	if node == nil {
		return ""
	}
	return string(c.Source[node.StartByte():node.EndByte()])
}

func (c *ExtractionContext) Location(node *sitter.Node) Location {
	return Location{
		File:   c.Unit.Path,
		Line:   int(node.StartPosition().Row) + 1,
		Column: int(node.StartPosition().Column) + 1,
	}
}

func (c *ExtractionContext) ChildText(node *sitter.Node, kind string) string {
	if node == nil {
		return ""
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == kind {
			return c.Text(child)
		}
	}
	return ""
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}

// eraseTypeName reduces a source type to its base name: generic arguments,
// array suffixes and varargs dots are dropped.
func eraseTypeName(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "<["); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSuffix(raw, "...")
	return strings.TrimSpace(raw)
}

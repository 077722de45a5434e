package parser

import (
	"fmt"
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"

	cerrors "arch4u/internal/core/errors"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*CompilationUnit, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	p := &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
	p.RegisterExtractor("java", &JavaExtractor{})
	return p
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

func (p *Parser) ParseFile(path string, content []byte) (*CompilationUnit, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, cerrors.AddContext(
			cerrors.New(cerrors.CodeNotSupported, "unsupported language"),
			cerrors.CtxPath, path)
	}

	grammar := p.loader.languages[lang]
	if grammar == nil {
		return nil, cerrors.New(cerrors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, cerrors.AddContext(
			cerrors.New(cerrors.CodeParseError, "parse failed"),
			cerrors.CtxPath, path)
	}
	defer tree.Close()

	root := tree.RootNode()

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, cerrors.New(cerrors.CodeInternal, fmt.Sprintf("no extractor for: %s", lang))
	}

	return extractor.Extract(root, content, path)
}

func (p *Parser) detectLanguage(path string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".java":
		return "java"
	default:
		return ""
	}
}

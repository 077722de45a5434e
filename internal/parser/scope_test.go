package parser

import (
	"testing"
)

func TestScopeLookupInnermostWins(t *testing.T) {
	outer := NewScope(nil)
	inner := NewScope(outer)

	field := &VariableDecl{Name: "f", Kind: KindField}
	local := &VariableDecl{Name: "f", Kind: KindLocal}

	outer.Declare(field)
	inner.Declare(local)

	if got := inner.Lookup("f"); got != local {
		t.Errorf("expected innermost declaration, got %+v", got)
	}
	if got := outer.Lookup("f"); got != field {
		t.Errorf("expected outer declaration, got %+v", got)
	}
	if got := inner.Lookup("missing"); got != nil {
		t.Errorf("expected nil for unknown name, got %+v", got)
	}
}

func TestScopeDeclareIgnoresEmpty(t *testing.T) {
	s := NewScope(nil)
	s.Declare(nil)
	s.Declare(&VariableDecl{Name: ""})
	if got := s.Lookup(""); got != nil {
		t.Errorf("expected empty name to be unregistered, got %+v", got)
	}
}

func TestEraseTypeName(t *testing.T) {
	cases := map[string]string{
		"ObjectMapper":        "ObjectMapper",
		"List<Foo>":           "List",
		"String[]":            "String",
		"java.util.Map<K, V>": "java.util.Map",
		"int...":              "int",
		"  Foo ":              "Foo",
	}
	for input, want := range cases {
		if got := eraseTypeName(input); got != want {
			t.Errorf("eraseTypeName(%q) = %q, want %q", input, got, want)
		}
	}
}

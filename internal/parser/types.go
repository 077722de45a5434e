package parser

import (
	"time"
)

// CompilationUnit is the parsed representation of one source file. It is
// immutable once ParseFile returns it.
type CompilationUnit struct {
	Path        string
	Language    string
	PackageName string
	Imports     []Import
	Types       []TypeDecl
	Variables   []*VariableDecl // all variable declarations in source order
	ParsedAt    time.Time
}

type Import struct {
	Name     string // fully qualified imported name
	Wildcard bool   // import com.foo.*
	Static   bool
	Location Location
}

// TypeDecl is a class/interface/enum/record declared in the unit.
type TypeDecl struct {
	Name     string // simple name
	FullName string // package-qualified name
	Kind     TypeKind
	Supers   []string // raw extends/implements names as written in source
	Location Location
}

// VariableDecl is a local variable, field, parameter or catch/for variable.
type VariableDecl struct {
	Name     string
	Type     TypeReference
	Kind     VariableKind
	Location Location
	Usages   []Usage // every occurrence of the name in scope, source order
}

// TypeReference is the declared type of a variable as written in source.
// Name is the erased base name: generics, array suffixes and varargs dots
// are stripped.
type TypeReference struct {
	Raw  string
	Name string
}

// Usage is a single occurrence of a variable's name. InvokedMethod is
// non-empty only when the occurrence is the receiver of a method call.
type Usage struct {
	Location      Location
	InvokedMethod string
}

type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindRecord
)

type VariableKind int

const (
	KindLocal VariableKind = iota
	KindField
	KindParameter
	KindCatchParam
	KindForVariable
)

type Location struct {
	File   string
	Line   int
	Column int
}

package parser

// Scope is one lexical scope. Lookup walks outward, so a name always binds
// to the innermost declaration that introduced it.
type Scope struct {
	decls  map[string]*VariableDecl
	parent *Scope
}

func NewScope(parent *Scope) *Scope {
	return &Scope{
		decls:  make(map[string]*VariableDecl),
		parent: parent,
	}
}

func (s *Scope) Declare(decl *VariableDecl) {
	if decl == nil || decl.Name == "" {
		return
	}
	s.decls[decl.Name] = decl
}

func (s *Scope) Lookup(name string) *VariableDecl {
	if decl, ok := s.decls[name]; ok {
		return decl
	}
	if s.parent != nil {
		return s.parent.Lookup(name)
	}
	return nil
}

package rules

import (
	"strings"

	"github.com/gobwas/glob"

	"arch4u/internal/parser"
)

// RuleConfig configures one prohibited-method-invocation rule instance.
// Configuration is supplied externally and never mutated by the engine.
type RuleConfig struct {
	Name          string
	TargetType    string   // fully qualified class name
	Methods       []string // prohibited method names; glob patterns allowed
	CheckSubtypes bool
}

// Enabled reports whether the rule can ever fire. A rule without a target
// type or without methods is a no-op, not an error.
func (c RuleConfig) Enabled() bool {
	return strings.TrimSpace(c.TargetType) != "" && len(c.Methods) > 0
}

// Violation is one reported rule hit. It is never mutated after creation.
type Violation struct {
	Rule       string
	TargetType string
	Method     string
	Location   parser.Location
}

// methodMatcher matches invoked method names against the configured set.
// Plain names are matched exactly; entries containing glob metacharacters
// are compiled as patterns.
type methodMatcher struct {
	exact map[string]bool
	globs []glob.Glob
}

func newMethodMatcher(methods []string) methodMatcher {
	m := methodMatcher{exact: make(map[string]bool)}
	for _, method := range methods {
		method = strings.TrimSpace(method)
		if method == "" {
			continue
		}
		if strings.ContainsAny(method, "*?[]{}") {
			if g, err := glob.Compile(method); err == nil {
				m.globs = append(m.globs, g)
			}
			continue
		}
		m.exact[method] = true
	}
	return m
}

func (m methodMatcher) Matches(name string) bool {
	if name == "" {
		return false
	}
	if m.exact[name] {
		return true
	}
	for _, g := range m.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

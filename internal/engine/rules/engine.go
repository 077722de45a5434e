package rules

import (
	"arch4u/internal/core/errors"
	"arch4u/internal/parser"
	"arch4u/internal/resolver"
	"arch4u/internal/shared/observability"
)

// Engine applies rule configurations to compilation units. Analysis is a
// pure function of (unit, config): the engine mutates neither, and repeated
// runs yield identical violation sequences in source order.
type Engine struct {
	resolver *resolver.Resolver
}

func NewEngine(res *resolver.Resolver) *Engine {
	return &Engine{resolver: res}
}

// Analyze runs one rule over one unit. A nil unit is a precondition
// violation; a disabled rule returns no violations and no error.
func (e *Engine) Analyze(unit *parser.CompilationUnit, cfg RuleConfig) ([]Violation, error) {
	if unit == nil {
		return nil, errors.New(errors.CodeValidationError, "nil compilation unit")
	}
	if !cfg.Enabled() {
		return nil, nil
	}

	matcher := newMethodMatcher(cfg.Methods)

	var violations []Violation
	for _, decl := range unit.Variables {
		if !e.typeMatches(unit, decl, cfg) {
			continue
		}
		for _, usage := range decl.Usages {
			if usage.InvokedMethod == "" {
				continue
			}
			if !matcher.Matches(usage.InvokedMethod) {
				continue
			}
			violations = append(violations, Violation{
				Rule:       cfg.Name,
				TargetType: cfg.TargetType,
				Method:     usage.InvokedMethod,
				Location:   usage.Location,
			})
		}
	}

	if len(violations) > 0 {
		observability.ViolationsTotal.WithLabelValues(cfg.Name).Add(float64(len(violations)))
	}
	return violations, nil
}

// AnalyzeAll applies every rule in order and concatenates the results.
func (e *Engine) AnalyzeAll(unit *parser.CompilationUnit, cfgs []RuleConfig) ([]Violation, error) {
	if unit == nil {
		return nil, errors.New(errors.CodeValidationError, "nil compilation unit")
	}
	var all []Violation
	for _, cfg := range cfgs {
		violations, err := e.Analyze(unit, cfg)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxRule, cfg.Name)
		}
		all = append(all, violations...)
	}
	return all, nil
}

func (e *Engine) typeMatches(unit *parser.CompilationUnit, decl *parser.VariableDecl, cfg RuleConfig) bool {
	if cfg.CheckSubtypes {
		return e.resolver.IsTypeOrSubtype(unit, decl, cfg.TargetType)
	}
	return e.resolver.IsExactlyType(unit, decl, cfg.TargetType)
}

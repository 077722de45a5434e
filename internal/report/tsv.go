package report

import (
	"fmt"
	"strings"

	"arch4u/internal/engine/rules"
)

type TSVGenerator struct {
	violations []rules.Violation
}

func NewTSVGenerator(violations []rules.Violation) *TSVGenerator {
	return &TSVGenerator{violations: violations}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Rule\tFile\tLine\tColumn\tTargetType\tMethod\n")
	for _, v := range t.violations {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%d\t%s\t%s\n",
			v.Rule,
			v.Location.File,
			v.Location.Line,
			v.Location.Column,
			v.TargetType,
			v.Method,
		))
	}

	return buf.String(), nil
}

package rules

// Report accumulates violations across units and rules. It performs no I/O;
// rendering is the report package's job.
type Report struct {
	violations []Violation
}

func NewReport() *Report {
	return &Report{}
}

func (r *Report) Add(violations ...Violation) {
	r.violations = append(r.violations, violations...)
}

// Violations returns the accumulated violations in insertion order.
func (r *Report) Violations() []Violation {
	out := make([]Violation, len(r.violations))
	copy(out, r.violations)
	return out
}

func (r *Report) Len() int {
	return len(r.violations)
}

// CountByRule returns the number of violations per rule name.
func (r *Report) CountByRule() map[string]int {
	counts := make(map[string]int)
	for _, v := range r.violations {
		counts[v.Rule]++
	}
	return counts
}

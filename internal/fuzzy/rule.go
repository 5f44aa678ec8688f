package fuzzy

import (
	"fmt"
	"math"
)

// DefaultWeight applies when a rule is declared without a weight.
const DefaultWeight = 1.0

// Rule is "if Antecedent then Consequent", scaled by Weight.
type Rule struct {
	Label      string
	Antecedent Expr
	Consequent Term
	Weight     float64
}

// NewRule builds a rule with the default weight.
func NewRule(antecedent Expr, consequent Term) Rule {
	return Rule{Antecedent: antecedent, Consequent: consequent, Weight: DefaultWeight}
}

// WithWeight returns a copy of r with the given weight.
func (r Rule) WithWeight(w float64) Rule {
	r.Weight = w
	return r
}

// Named returns a copy of r carrying a diagnostic label.
func (r Rule) Named(label string) Rule {
	r.Label = label
	return r
}

func (r Rule) String() string {
	ante := "<nil>"
	if r.Antecedent != nil {
		ante = r.Antecedent.String()
	}
	s := fmt.Sprintf("if %s then %s", ante, r.Consequent)
	if r.Weight != DefaultWeight && r.Weight != 0 {
		s += fmt.Sprintf(" (weight %g)", r.Weight)
	}
	return s
}

// FiringStrength evaluates the antecedent, scales it by the weight and
// clamps to [0,1] so a weighted rule never implies more than full membership.
func (r Rule) FiringStrength(d Degrees) float64 {
	w := r.Weight
	if w == 0 {
		w = DefaultWeight
	}
	v := w * r.Antecedent.eval(d)
	if math.IsNaN(v) {
		return 0
	}
	return clamp01(v)
}

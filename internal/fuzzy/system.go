package fuzzy

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Definition is everything Build needs. It is copied, so the caller may
// reuse or mutate it afterwards without affecting the built System.
type Definition struct {
	Name   string
	Inputs []Variable
	Output Variable
	Rules  []Rule
}

// System is a validated, immutable Mamdani inference system. It is safe
// for concurrent use by any number of Simulations.
type System struct {
	name    string
	inputs  []Variable
	byName  map[string]int
	output  Variable
	rules   []Rule
	points  []float64
	implied map[string][]float64 // output term -> MF sampled on points
}

// Build validates def and returns the System. Every failure is a *ConstructionError.
func Build(def Definition) (*System, error) {
	if len(def.Inputs) == 0 {
		return nil, constructionErr(ErrMissingInput, "system %q declares no input variables", def.Name)
	}
	if err := def.Output.validate(); err != nil {
		return nil, err
	}
	s := &System{
		name:   def.Name,
		inputs: make([]Variable, len(def.Inputs)),
		byName: make(map[string]int, len(def.Inputs)),
		output: cloneVariable(def.Output),
	}
	for i, v := range def.Inputs {
		if err := v.validate(); err != nil {
			return nil, err
		}
		if _, dup := s.byName[v.Name]; dup || v.Name == def.Output.Name {
			return nil, constructionErr(ErrDuplicateName, "variable %q", v.Name)
		}
		s.byName[v.Name] = i
		s.inputs[i] = cloneVariable(v)
	}

	if len(def.Rules) == 0 {
		return nil, constructionErr(ErrNoRules, "system %q", def.Name)
	}
	s.rules = make([]Rule, len(def.Rules))
	for i, r := range def.Rules {
		checked, err := s.checkRule(r)
		if err != nil {
			return nil, constructionErr(err, "rule %d (%s)", i+1, r)
		}
		s.rules[i] = checked
	}

	s.points = s.output.Universe.Points()
	s.implied = make(map[string][]float64, len(s.output.Terms))
	for _, t := range s.output.Terms {
		curve := make([]float64, len(s.points))
		for i, x := range s.points {
			curve[i] = t.MF.Degree(x)
		}
		s.implied[t.Name] = curve
	}
	return s, nil
}

func (s *System) checkRule(r Rule) (Rule, error) {
	if r.Antecedent == nil {
		return r, errors.Wrap(ErrMalformedExpr, "nil antecedent")
	}
	if err := r.Antecedent.check(); err != nil {
		return r, err
	}
	var dangling error
	r.Antecedent.walk(func(t Term) {
		if dangling != nil {
			return
		}
		idx, ok := s.byName[t.Variable]
		if !ok {
			dangling = errors.Wrapf(ErrDanglingTerm, "antecedent references unknown input variable %q", t.Variable)
			return
		}
		if _, ok := s.inputs[idx].Lookup(t.Name); !ok {
			dangling = errors.Wrapf(ErrDanglingTerm, "variable %q has no term %q", t.Variable, t.Name)
		}
	})
	if dangling != nil {
		return r, dangling
	}
	if r.Consequent.Variable != s.output.Name {
		return r, errors.Wrapf(ErrConsequentNotOutput, "consequent targets %q, output is %q", r.Consequent.Variable, s.output.Name)
	}
	if _, ok := s.output.Lookup(r.Consequent.Name); !ok {
		return r, errors.Wrapf(ErrDanglingTerm, "output %q has no term %q", s.output.Name, r.Consequent.Name)
	}
	switch {
	case r.Weight == 0:
		r.Weight = DefaultWeight
	case r.Weight < 0 || math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0):
		return r, errors.Wrapf(ErrBadWeight, "weight %g", r.Weight)
	}
	return r, nil
}

func cloneVariable(v Variable) Variable {
	v.Terms = append([]TermDef(nil), v.Terms...)
	return v
}

func (s *System) Name() string { return s.name }

// Inputs returns copies of the input variables in declaration order.
func (s *System) Inputs() []Variable {
	out := make([]Variable, len(s.inputs))
	for i, v := range s.inputs {
		out[i] = cloneVariable(v)
	}
	return out
}

// Input returns the named input variable.
func (s *System) Input(name string) (Variable, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Variable{}, false
	}
	return cloneVariable(s.inputs[i]), true
}

func (s *System) Output() Variable { return cloneVariable(s.output) }

// Rules returns the rules in insertion order, weights normalized.
func (s *System) Rules() []Rule { return append([]Rule(nil), s.rules...) }

// Definition rebuilds an equivalent Definition from the system.
func (s *System) Definition() Definition {
	return Definition{Name: s.name, Inputs: s.Inputs(), Output: s.Output(), Rules: s.Rules()}
}

// Points returns the output universe sample points.
func (s *System) Points() []float64 { return append([]float64(nil), s.points...) }

// OutputDegrees evaluates every output term at x, in term order.
func (s *System) OutputDegrees(x float64) []TermDegree {
	out := make([]TermDegree, len(s.output.Terms))
	for i, t := range s.output.Terms {
		out[i] = TermDegree{Term: t.Name, Degree: t.MF.Degree(x)}
	}
	return out
}

// TermDegree pairs a term name with a membership degree.
type TermDegree struct {
	Term   string  `json:"term"`
	Degree float64 `json:"degree"`
}

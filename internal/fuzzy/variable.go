package fuzzy

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Universe is the closed interval [Min, Max] sampled every Step.
// Sampling is only used to discretize the output variable.
type Universe struct {
	Min  float64 `json:"min" toml:"min" yaml:"min"`
	Max  float64 `json:"max" toml:"max" yaml:"max"`
	Step float64 `json:"step" toml:"step" yaml:"step"`
}

func (u Universe) validate() error {
	for _, v := range []float64{u.Min, u.Max, u.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrap(ErrBadUniverse, "non-finite bound")
		}
	}
	if u.Min >= u.Max {
		return errors.Wrapf(ErrBadUniverse, "min %g must be below max %g", u.Min, u.Max)
	}
	if u.Step <= 0 {
		return errors.Wrapf(ErrBadUniverse, "step %g must be positive", u.Step)
	}
	return nil
}

// Points returns the sample points Min, Min+Step, ... up to Max inclusive.
// Points are computed by index so they do not accumulate rounding drift.
func (u Universe) Points() []float64 {
	n := int(math.Floor((u.Max-u.Min)/u.Step+1e-9)) + 1
	out := make([]float64, n)
	for i := range out {
		x := u.Min + float64(i)*u.Step
		if x > u.Max {
			x = u.Max
		}
		out[i] = x
	}
	return out
}

// TermDef names one membership function of a variable.
type TermDef struct {
	Name string
	MF   MembershipFunc
}

// Variable is a linguistic variable: a named axis with ordered terms.
type Variable struct {
	Name     string
	Universe Universe
	Terms    []TermDef
}

// NewVariable starts a variable definition; chain With to add terms.
func NewVariable(name string, u Universe) Variable {
	return Variable{Name: name, Universe: u}
}

// With returns a copy of v with one more term appended.
func (v Variable) With(name string, mf MembershipFunc) Variable {
	terms := make([]TermDef, len(v.Terms), len(v.Terms)+1)
	copy(terms, v.Terms)
	v.Terms = append(terms, TermDef{Name: name, MF: mf})
	return v
}

// Lookup returns the membership function of the named term.
func (v Variable) Lookup(term string) (MembershipFunc, bool) {
	for _, t := range v.Terms {
		if t.Name == term {
			return t.MF, true
		}
	}
	return MembershipFunc{}, false
}

// TermNames lists term names in definition order.
func (v Variable) TermNames() []string {
	out := make([]string, len(v.Terms))
	for i, t := range v.Terms {
		out[i] = t.Name
	}
	return out
}

func (v Variable) validate() error {
	if v.Name == "" {
		return constructionErr(ErrMalformedExpr, "variable with empty name")
	}
	if err := v.Universe.validate(); err != nil {
		return constructionErr(err, "variable %q", v.Name)
	}
	if len(v.Terms) == 0 {
		return constructionErr(ErrDanglingTerm, "variable %q has no terms", v.Name)
	}
	seen := make(map[string]struct{}, len(v.Terms))
	for _, t := range v.Terms {
		if t.Name == "" {
			return constructionErr(ErrMalformedExpr, "variable %q: empty term name", v.Name)
		}
		if _, dup := seen[t.Name]; dup {
			return constructionErr(ErrDuplicateName, "variable %q: term %q", v.Name, t.Name)
		}
		seen[t.Name] = struct{}{}
		if err := t.MF.validate(); err != nil {
			return constructionErr(err, "variable %q: term %q", v.Name, t.Name)
		}
	}
	return nil
}

// Term references one term of one variable.
type Term struct {
	Variable string `json:"variable"`
	Name     string `json:"term"`
}

// T is shorthand for Term{variable, name}.
func T(variable, name string) Term { return Term{Variable: variable, Name: name} }

func (t Term) String() string { return t.Variable + " is " + t.Name }

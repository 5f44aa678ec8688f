package fuzzy

import (
	"math"
	"sort"
)

// Point is one sample of the aggregated output set.
type Point struct {
	X      float64 `json:"x"`
	Degree float64 `json:"degree"`
}

// Result is the outcome of one inference run.
type Result struct {
	// Value is the centroid. It is NaN when Compute returned ErrNoRuleFired.
	Value float64
	// Curve is the aggregated output set over the output universe.
	Curve []Point
	// Firing holds each rule's clamped firing strength, in rule order.
	Firing []float64
	// Memberships maps input variable -> term -> degree.
	Memberships map[string]map[string]float64
}

// Simulation binds one crisp value per input variable of a System.
// It is single-use: Compute runs the pipeline once and caches the outcome.
type Simulation struct {
	sys    *System
	values []float64

	done   bool
	result Result
	err    error
}

// NewSimulation validates inputs against the system. Every input variable
// must be bound and unknown names are rejected. Values outside a variable's
// universe are accepted as-is.
func (s *System) NewSimulation(inputs map[string]float64) (*Simulation, error) {
	values := make([]float64, len(s.inputs))
	for i, v := range s.inputs {
		x, ok := inputs[v.Name]
		if !ok {
			return nil, constructionErr(ErrMissingInput, "input %q", v.Name)
		}
		values[i] = x
	}
	if len(inputs) != len(s.inputs) {
		names := make([]string, 0, len(inputs))
		for name := range inputs {
			if _, ok := s.byName[name]; !ok {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		return nil, constructionErr(ErrUnknownInput, "input %q", names[0])
	}
	return &Simulation{sys: s, values: values}, nil
}

// Inputs returns the bound crisp values.
func (sim *Simulation) Inputs() map[string]float64 {
	out := make(map[string]float64, len(sim.values))
	for i, v := range sim.sys.inputs {
		out[v.Name] = sim.values[i]
	}
	return out
}

// Compute runs fuzzification, rule firing, min implication, max aggregation
// and centroid defuzzification. When no rule contributes any membership
// the partial Result (curve, firing strengths, memberships) is returned
// together with ErrNoRuleFired.
func (sim *Simulation) Compute() (Result, error) {
	if sim.done {
		return sim.result, sim.err
	}
	sim.done = true
	sim.result, sim.err = sim.run()
	return sim.result, sim.err
}

func (sim *Simulation) run() (Result, error) {
	s := sim.sys
	degrees, memberships := sim.fuzzify()

	firing := make([]float64, len(s.rules))
	agg := make([]float64, len(s.points))
	for i, r := range s.rules {
		f := r.FiringStrength(degrees)
		firing[i] = f
		if f == 0 {
			continue
		}
		implied := s.implied[r.Consequent.Name]
		for j, mu := range implied {
			if v := min(mu, f); v > agg[j] {
				agg[j] = v
			}
		}
	}

	res := Result{
		Curve:       make([]Point, len(s.points)),
		Firing:      firing,
		Memberships: memberships,
	}
	var num, den float64
	for j, x := range s.points {
		res.Curve[j] = Point{X: x, Degree: agg[j]}
		num += x * agg[j]
		den += agg[j]
	}
	if den <= 0 {
		res.Value = math.NaN()
		return res, ErrNoRuleFired
	}
	res.Value = num / den
	return res, nil
}

func (sim *Simulation) fuzzify() (Degrees, map[string]map[string]float64) {
	d := make(Degrees)
	memberships := make(map[string]map[string]float64, len(sim.sys.inputs))
	for i, v := range sim.sys.inputs {
		x := sim.values[i]
		byTerm := make(map[string]float64, len(v.Terms))
		for _, t := range v.Terms {
			mu := t.MF.Degree(x)
			d[T(v.Name, t.Name)] = mu
			byTerm[t.Name] = mu
		}
		memberships[v.Name] = byTerm
	}
	return d, memberships
}

// Evaluate is NewSimulation followed by Compute.
func Evaluate(s *System, inputs map[string]float64) (Result, error) {
	sim, err := s.NewSimulation(inputs)
	if err != nil {
		return Result{}, err
	}
	return sim.Compute()
}

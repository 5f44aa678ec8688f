package fuzzy_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

// minimalDefinition: one input x on [0,10], one output y on [0,10].
func minimalDefinition() fuzzy.Definition {
	x := fuzzy.NewVariable("x", fuzzy.Universe{Min: 0, Max: 10, Step: 1}).
		With("low", fuzzy.Trapezoidal(0, 0, 3, 6)).
		With("high", fuzzy.Trapezoidal(4, 7, 10, 10))
	y := fuzzy.NewVariable("y", fuzzy.Universe{Min: 0, Max: 10, Step: 1}).
		With("small", fuzzy.Triangular(0, 0, 5)).
		With("mid", fuzzy.Triangular(2, 5, 8)).
		With("big", fuzzy.Triangular(5, 10, 10))
	return fuzzy.Definition{
		Name:   "minimal",
		Inputs: []fuzzy.Variable{x},
		Output: y,
		Rules: []fuzzy.Rule{
			fuzzy.NewRule(fuzzy.Is("x", "low"), fuzzy.T("y", "small")),
			fuzzy.NewRule(fuzzy.Is("x", "high"), fuzzy.T("y", "big")),
		},
	}
}

func TestBuild_OK(t *testing.T) {
	sys, err := fuzzy.Build(minimalDefinition())
	require.NoError(t, err)
	require.Equal(t, "minimal", sys.Name())
	require.Len(t, sys.Points(), 11)
	require.Len(t, sys.Rules(), 2)
	require.Equal(t, fuzzy.DefaultWeight, sys.Rules()[0].Weight)
	require.Equal(t, []string{"small", "mid", "big"}, sys.Output().TermNames())

	in, ok := sys.Input("x")
	require.True(t, ok)
	require.Equal(t, []string{"low", "high"}, in.TermNames())
	_, ok = sys.Input("y")
	require.False(t, ok)
}

func TestBuild_DefinitionIsCopied(t *testing.T) {
	def := minimalDefinition()
	sys, err := fuzzy.Build(def)
	require.NoError(t, err)

	def.Rules[0] = fuzzy.NewRule(fuzzy.Is("x", "high"), fuzzy.T("y", "mid"))
	def.Inputs[0].Terms[0].MF = fuzzy.Triangular(9, 9.5, 10)

	require.Equal(t, fuzzy.T("y", "small"), sys.Rules()[0].Consequent)
	mf, _ := sys.Inputs()[0].Lookup("low")
	require.Equal(t, 1.0, mf.Degree(1))
}

func TestBuild_ConstructionErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*fuzzy.Definition)
		want   error
	}{
		{"dangling variable", func(d *fuzzy.Definition) {
			d.Rules[0].Antecedent = fuzzy.Is("nope", "low")
		}, fuzzy.ErrDanglingTerm},
		{"dangling term", func(d *fuzzy.Definition) {
			d.Rules[0].Antecedent = fuzzy.And(fuzzy.Is("x", "low"), fuzzy.Is("x", "medium"))
		}, fuzzy.ErrDanglingTerm},
		{"dangling consequent term", func(d *fuzzy.Definition) {
			d.Rules[1].Consequent = fuzzy.T("y", "huge")
		}, fuzzy.ErrDanglingTerm},
		{"consequent on input", func(d *fuzzy.Definition) {
			d.Rules[0].Consequent = fuzzy.T("x", "low")
		}, fuzzy.ErrConsequentNotOutput},
		{"empty rules", func(d *fuzzy.Definition) {
			d.Rules = nil
		}, fuzzy.ErrNoRules},
		{"min not below max", func(d *fuzzy.Definition) {
			d.Output.Universe = fuzzy.Universe{Min: 10, Max: 10, Step: 1}
		}, fuzzy.ErrBadUniverse},
		{"non-positive step", func(d *fuzzy.Definition) {
			d.Inputs[0].Universe.Step = 0
		}, fuzzy.ErrBadUniverse},
		{"negative weight", func(d *fuzzy.Definition) {
			d.Rules[0] = d.Rules[0].WithWeight(-1)
		}, fuzzy.ErrBadWeight},
		{"and with one operand", func(d *fuzzy.Definition) {
			d.Rules[0].Antecedent = fuzzy.And(fuzzy.Is("x", "low"))
		}, fuzzy.ErrMalformedExpr},
		{"nil antecedent", func(d *fuzzy.Definition) {
			d.Rules[0].Antecedent = nil
		}, fuzzy.ErrMalformedExpr},
		{"not of nil", func(d *fuzzy.Definition) {
			d.Rules[0].Antecedent = fuzzy.Not(nil)
		}, fuzzy.ErrMalformedExpr},
		{"duplicate term", func(d *fuzzy.Definition) {
			d.Inputs[0] = d.Inputs[0].With("low", fuzzy.Triangular(0, 1, 2))
		}, fuzzy.ErrDuplicateName},
		{"input named like output", func(d *fuzzy.Definition) {
			d.Inputs = append(d.Inputs, fuzzy.NewVariable("y", fuzzy.Universe{Min: 0, Max: 1, Step: 0.1}).
				With("t", fuzzy.Triangular(0, 0.5, 1)))
		}, fuzzy.ErrDuplicateName},
		{"no inputs", func(d *fuzzy.Definition) {
			d.Inputs = nil
		}, fuzzy.ErrMissingInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := minimalDefinition()
			tc.mutate(&def)
			sys, err := fuzzy.Build(def)
			require.Nil(t, sys)
			require.ErrorIs(t, err, tc.want)
			require.True(t, fuzzy.IsConstructionError(err), "got %T", err)
		})
	}
}

func TestBuild_ZeroWeightDefaults(t *testing.T) {
	def := minimalDefinition()
	def.Rules[1].Weight = 0
	sys, err := fuzzy.Build(def)
	require.NoError(t, err)
	require.Equal(t, 1.0, sys.Rules()[1].Weight)
}

func TestUniverse_Points(t *testing.T) {
	pts := fuzzy.Universe{Min: 0, Max: 100, Step: 0.1}.Points()
	require.Len(t, pts, 1001)
	require.Equal(t, 0.0, pts[0])
	require.Equal(t, 100.0, pts[1000])
	require.InDelta(t, 50.0, pts[500], 1e-9)

	pts = fuzzy.Universe{Min: 0, Max: 1, Step: 0.3}.Points()
	require.Len(t, pts, 4)
	require.InDelta(t, 0.9, pts[3], 1e-12)
}

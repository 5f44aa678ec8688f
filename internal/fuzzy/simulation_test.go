package fuzzy_test

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

type SimulationSuite struct {
	suite.Suite
	sys *fuzzy.System
}

func (s *SimulationSuite) SetupTest() {
	sys, err := fuzzy.Build(minimalDefinition())
	s.Require().NoError(err)
	s.sys = sys
}

func TestSimulationSuite(t *testing.T) {
	suite.Run(t, new(SimulationSuite))
}

func (s *SimulationSuite) TestMissingAndUnknownInputs() {
	_, err := s.sys.NewSimulation(map[string]float64{})
	s.Require().ErrorIs(err, fuzzy.ErrMissingInput)
	s.Require().True(fuzzy.IsConstructionError(err))

	_, err = s.sys.NewSimulation(map[string]float64{"x": 1, "z": 2})
	s.Require().ErrorIs(err, fuzzy.ErrUnknownInput)
}

func (s *SimulationSuite) TestLowInputLeansSmall() {
	res, err := fuzzy.Evaluate(s.sys, map[string]float64{"x": 1})
	s.Require().NoError(err)
	s.Require().Less(res.Value, 5.0)
	s.Require().Len(res.Curve, 11)
	s.Require().Equal([]float64{1, 0}, res.Firing)
	s.Require().Equal(1.0, res.Memberships["x"]["low"])
	s.Require().Equal(0.0, res.Memberships["x"]["high"])
	// implied set of the single firing rule is the unclipped consequent
	s.Require().Equal(1.0, res.Curve[0].Degree)
	s.Require().Equal(0.0, res.Curve[5].Degree)
}

func (s *SimulationSuite) TestComputeIsCached() {
	sim, err := s.sys.NewSimulation(map[string]float64{"x": 5})
	s.Require().NoError(err)
	first, err := sim.Compute()
	s.Require().NoError(err)
	second, err := sim.Compute()
	s.Require().NoError(err)
	s.Require().Equal(first.Value, second.Value)
	s.Require().Equal(map[string]float64{"x": 5}, sim.Inputs())
}

func (s *SimulationSuite) TestOutOfUniverseInputNoRuleFired() {
	// Both input terms are zero strictly outside [0,10].
	res, err := fuzzy.Evaluate(s.sys, map[string]float64{"x": -3})
	s.Require().ErrorIs(err, fuzzy.ErrNoRuleFired)
	s.Require().False(fuzzy.IsConstructionError(err))
	s.Require().True(math.IsNaN(res.Value))
	s.Require().Equal([]float64{0, 0}, res.Firing)
	for _, p := range res.Curve {
		s.Require().Equal(0.0, p.Degree)
	}
}

func (s *SimulationSuite) TestConcurrentSimulationsShareSystem() {
	want := map[float64]float64{}
	for x := 0.0; x <= 10; x++ {
		res, err := fuzzy.Evaluate(s.sys, map[string]float64{"x": x})
		s.Require().NoError(err)
		want[x] = res.Value
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for x := 0.0; x <= 10; x++ {
				res, err := fuzzy.Evaluate(s.sys, map[string]float64{"x": x})
				if err != nil || res.Value != want[x] {
					errs <- "mismatch"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	s.Require().Empty(errs)
}

func singleRuleSystem(t *testing.T, weight float64) *fuzzy.System {
	t.Helper()
	in := fuzzy.NewVariable("x", fuzzy.Universe{Min: 0, Max: 2, Step: 0.1}).
		With("t", fuzzy.Triangular(0, 1, 2))
	out := fuzzy.NewVariable("y", fuzzy.Universe{Min: 0, Max: 10, Step: 1}).
		With("mid", fuzzy.Triangular(2, 5, 8))
	sys, err := fuzzy.Build(fuzzy.Definition{
		Inputs: []fuzzy.Variable{in},
		Output: out,
		Rules:  []fuzzy.Rule{fuzzy.NewRule(fuzzy.Is("x", "t"), fuzzy.T("y", "mid")).WithWeight(weight)},
	})
	require.NoError(t, err)
	return sys
}

func TestWeightClampsFiringStrength(t *testing.T) {
	res, err := fuzzy.Evaluate(singleRuleSystem(t, 2.0), map[string]float64{"x": 0.6})
	require.NoError(t, err)
	require.Equal(t, 1.0, res.Firing[0], "2.0 * 0.6 must clamp to 1.0")

	peak := 0.0
	for _, p := range res.Curve {
		peak = max(peak, p.Degree)
	}
	require.Equal(t, 1.0, peak)

	res, err = fuzzy.Evaluate(singleRuleSystem(t, 0.5), map[string]float64{"x": 0.6})
	require.NoError(t, err)
	require.InDelta(t, 0.3, res.Firing[0], 1e-12)
	for _, p := range res.Curve {
		require.LessOrEqual(t, p.Degree, 0.3+1e-12, "implied set is clipped at the firing strength")
	}
}

func TestCentroidOfSymmetricSet(t *testing.T) {
	for _, x := range []float64{0.3, 1, 1.7} {
		res, err := fuzzy.Evaluate(singleRuleSystem(t, 1), map[string]float64{"x": x})
		require.NoError(t, err)
		require.InDelta(t, 5.0, res.Value, 1e-9)
	}
}

func TestRuleOrderDoesNotChangeScore(t *testing.T) {
	def := minimalDefinition()
	def.Rules = append(def.Rules,
		fuzzy.NewRule(fuzzy.And(fuzzy.Not(fuzzy.Is("x", "low")), fuzzy.Not(fuzzy.Is("x", "high"))), fuzzy.T("y", "mid")),
		fuzzy.NewRule(fuzzy.Or(fuzzy.Is("x", "low"), fuzzy.Is("x", "high")), fuzzy.T("y", "mid")).WithWeight(0.4),
	)
	base, err := fuzzy.Build(def)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		perm := append([]fuzzy.Rule(nil), def.Rules...)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		shuffled := def
		shuffled.Rules = perm
		sys, err := fuzzy.Build(shuffled)
		require.NoError(t, err)

		for x := 0.0; x <= 10; x += 0.5 {
			in := map[string]float64{"x": x}
			want, err := fuzzy.Evaluate(base, in)
			require.NoError(t, err)
			got, err := fuzzy.Evaluate(sys, in)
			require.NoError(t, err)
			require.Equal(t, want.Value, got.Value, "x=%v", x)
		}
	}
}

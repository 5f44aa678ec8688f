package fuzzy_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

func sweep() []float64 {
	xs := []float64{math.Inf(-1), -1e9, math.Inf(1), 1e9, math.NaN()}
	for x := -20.0; x <= 120.0; x += 0.25 {
		xs = append(xs, x)
	}
	return xs
}

func TestMembership_AlwaysInUnitInterval(t *testing.T) {
	mfs := []fuzzy.MembershipFunc{
		fuzzy.Triangular(3, 5, 7),
		fuzzy.Triangular(0, 0, 5),
		fuzzy.Triangular(5, 10, 10),
		fuzzy.Trapezoidal(0, 0, 3, 5),
		fuzzy.Trapezoidal(85, 97, 100, 100),
		fuzzy.Trapezoidal(25, 35, 45, 55),
		fuzzy.Gaussian(55, 7),
		fuzzy.Gaussian(0, 0.01),
	}
	for _, mf := range mfs {
		for _, x := range sweep() {
			d := mf.Degree(x)
			assert.Truef(t, d >= 0 && d <= 1, "%s%v at %v gave %v", mf.Shape(), mf.Params(), x, d)
		}
	}
}

func TestTriangular_Anchors(t *testing.T) {
	mf := fuzzy.Triangular(3, 5, 7)
	require.Equal(t, 1.0, mf.Degree(5))
	require.Equal(t, 0.0, mf.Degree(3))
	require.Equal(t, 0.0, mf.Degree(7))
	require.InDelta(t, 0.5, mf.Degree(4), 1e-12)
	require.InDelta(t, 0.5, mf.Degree(6), 1e-12)
	require.Equal(t, 0.0, mf.Degree(2.99))
	require.Equal(t, 0.0, mf.Degree(7.01))
}

func TestTrapezoidal_PlateauAndFeet(t *testing.T) {
	mf := fuzzy.Trapezoidal(25, 35, 45, 55)
	for x := 35.0; x <= 45.0; x += 0.5 {
		require.Equal(t, 1.0, mf.Degree(x), "plateau at %v", x)
	}
	for _, x := range []float64{-10, 0, 24.9, 25, 55, 55.1, 100} {
		require.Equal(t, 0.0, mf.Degree(x), "outside at %v", x)
	}
	require.InDelta(t, 0.5, mf.Degree(30), 1e-12)
	require.InDelta(t, 0.5, mf.Degree(50), 1e-12)
}

func TestTrapezoidal_Shoulders(t *testing.T) {
	left := fuzzy.Trapezoidal(0, 0, 3, 5)
	require.Equal(t, 1.0, left.Degree(0))
	require.Equal(t, 1.0, left.Degree(3))
	require.InDelta(t, 0.5, left.Degree(4), 1e-12)
	require.Equal(t, 0.0, left.Degree(-0.1), "outside [a,d] is zero even on a shoulder")

	right := fuzzy.Trapezoidal(7, 9, 10, 10)
	require.Equal(t, 1.0, right.Degree(10))
	require.Equal(t, 0.0, right.Degree(10.5))
}

func TestGaussian_PeakAndSymmetry(t *testing.T) {
	mf := fuzzy.Gaussian(40, 7)
	require.Equal(t, 1.0, mf.Degree(40))
	require.InDelta(t, mf.Degree(33), mf.Degree(47), 1e-15)
	require.InDelta(t, math.Exp(-0.5), mf.Degree(47), 1e-12)
}

func TestMembership_InvalidParametersRejectedAtBuild(t *testing.T) {
	cases := map[string]fuzzy.MembershipFunc{
		"triangle out of order": fuzzy.Triangular(5, 3, 7),
		"triangle zero width":   fuzzy.Triangular(2, 2, 2),
		"trapezoid unordered":   fuzzy.Trapezoidal(0, 5, 3, 7),
		"gaussian zero sigma":   fuzzy.Gaussian(1, 0),
		"zero value":            {},
	}
	for name, mf := range cases {
		t.Run(name, func(t *testing.T) {
			def := minimalDefinition()
			def.Inputs[0] = fuzzy.NewVariable("x", fuzzy.Universe{Min: 0, Max: 10, Step: 1}).With("bad", mf)
			def.Rules = []fuzzy.Rule{fuzzy.NewRule(fuzzy.Is("x", "bad"), fuzzy.T("y", "mid"))}
			_, err := fuzzy.Build(def)
			require.Error(t, err)
			require.ErrorIs(t, err, fuzzy.ErrBadMembership)
			require.True(t, fuzzy.IsConstructionError(err))
		})
	}
}

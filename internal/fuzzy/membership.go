package fuzzy

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Shape identifies the membership function family.
type Shape string

const (
	ShapeTriangular  Shape = "triangular"
	ShapeTrapezoidal Shape = "trapezoidal"
	ShapeGaussian    Shape = "gaussian"
)

// MembershipFunc maps a crisp value to a degree in [0,1].
// It is a value type; the zero value is invalid and rejected by Build.
type MembershipFunc struct {
	shape  Shape
	params [4]float64
}

// Triangular builds a triangle with feet at a and c and its peak at b.
func Triangular(a, b, c float64) MembershipFunc {
	return MembershipFunc{shape: ShapeTriangular, params: [4]float64{a, b, c}}
}

// Trapezoidal builds a trapezoid rising on [a,b], flat on [b,c], falling on [c,d].
// a == b or c == d gives a shoulder.
func Trapezoidal(a, b, c, d float64) MembershipFunc {
	return MembershipFunc{shape: ShapeTrapezoidal, params: [4]float64{a, b, c, d}}
}

// Gaussian builds exp(-0.5*((x-mean)/sigma)^2).
func Gaussian(mean, sigma float64) MembershipFunc {
	return MembershipFunc{shape: ShapeGaussian, params: [4]float64{mean, sigma}}
}

// NewMembership builds a function from a shape name and its parameters in
// constructor order, validating them.
func NewMembership(shape Shape, params ...float64) (MembershipFunc, error) {
	want := map[Shape]int{ShapeTriangular: 3, ShapeTrapezoidal: 4, ShapeGaussian: 2}
	n, ok := want[shape]
	if !ok {
		return MembershipFunc{}, errors.Wrapf(ErrBadMembership, "unknown shape %q", shape)
	}
	if len(params) != n {
		return MembershipFunc{}, errors.Wrapf(ErrBadMembership, "%s takes %d parameters, got %d", shape, n, len(params))
	}
	m := MembershipFunc{shape: shape}
	copy(m.params[:], params)
	if err := m.validate(); err != nil {
		return MembershipFunc{}, err
	}
	return m, nil
}

func (m MembershipFunc) Shape() Shape { return m.shape }

// Params returns the defining parameters in constructor order.
func (m MembershipFunc) Params() []float64 {
	switch m.shape {
	case ShapeTriangular:
		return []float64{m.params[0], m.params[1], m.params[2]}
	case ShapeTrapezoidal:
		return []float64{m.params[0], m.params[1], m.params[2], m.params[3]}
	case ShapeGaussian:
		return []float64{m.params[0], m.params[1]}
	}
	return nil
}

// Degree evaluates the function at x.
func (m MembershipFunc) Degree(x float64) float64 {
	if math.IsNaN(x) {
		return 0
	}
	p := m.params
	switch m.shape {
	case ShapeTriangular:
		return clamp01(triangle(x, p[0], p[1], p[2]))
	case ShapeTrapezoidal:
		return clamp01(trapezoid(x, p[0], p[1], p[2], p[3]))
	case ShapeGaussian:
		z := (x - p[0]) / p[1]
		return clamp01(math.Exp(-0.5 * z * z))
	}
	return 0
}

func (m MembershipFunc) validate() error {
	p := m.params
	for _, v := range m.Params() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrBadMembership, "%s: non-finite parameter", m.shape)
		}
	}
	switch m.shape {
	case ShapeTriangular:
		if !(p[0] <= p[1] && p[1] <= p[2]) || p[0] == p[2] {
			return errors.Wrapf(ErrBadMembership, "triangular(%g,%g,%g): need a <= b <= c and a < c", p[0], p[1], p[2])
		}
	case ShapeTrapezoidal:
		if !(p[0] <= p[1] && p[1] <= p[2] && p[2] <= p[3]) || p[0] == p[3] {
			return errors.Wrapf(ErrBadMembership, "trapezoidal(%g,%g,%g,%g): need a <= b <= c <= d and a < d", p[0], p[1], p[2], p[3])
		}
	case ShapeGaussian:
		if p[1] <= 0 {
			return errors.Wrapf(ErrBadMembership, "gaussian(%g,%g): sigma must be positive", p[0], p[1])
		}
	default:
		return errors.Wrapf(ErrBadMembership, "unknown shape %q", m.shape)
	}
	return nil
}

func triangle(x, a, b, c float64) float64 {
	switch {
	case x < a || x > c:
		return 0
	case x < b:
		return (x - a) / (b - a)
	case x == b:
		return 1
	default:
		return (c - x) / (c - b)
	}
}

func trapezoid(x, a, b, c, d float64) float64 {
	switch {
	case x < a || x > d:
		return 0
	case x < b:
		return (x - a) / (b - a)
	case x <= c:
		return 1
	default:
		return (d - x) / (d - c)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

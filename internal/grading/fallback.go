package grading

import "github.com/mind-engage/mindengage-fuzzyeval/internal/performance"

// Estimator produces a score when inference yields nothing. Results built
// from it are always marked SourceFallback.
type Estimator interface {
	Estimate(in performance.Inputs) float64
}

type EstimatorFunc func(in performance.Inputs) float64

func (f EstimatorFunc) Estimate(in performance.Inputs) float64 { return f(in) }

// WeightedAverage blends the raw indicators linearly:
//
//	grade 40%, attendance 15%, participation 15%,
//	socio-emotional 10%, context 10%, motivation 10%
//
// and scales to 0-100. Motivation enters as 10 x its category weight
// (0.9, 0.5, 0.2). The caller clamps the result.
var WeightedAverage Estimator = EstimatorFunc(func(in performance.Inputs) float64 {
	return (in.Grade*0.4 +
		in.Attendance*0.15/10 +
		in.Participation*0.15 +
		in.SocioEmotional*0.1 +
		in.Context*0.1 +
		(10*in.Motivation.FallbackWeight())*0.1) * 10
})

package grading

import "github.com/mind-engage/mindengage-fuzzyeval/internal/performance"

// AdjustmentWeight is the largest bonus, as a fraction of the grade, given
// for a complete mismatch between learner profile and teaching method.
const AdjustmentWeight = 0.12

// mismatch[learner][method]: 0 same style, 1 hardest mismatch.
var mismatch = map[performance.LearningStyle]map[performance.LearningStyle]float64{
	performance.Visual:      {performance.Visual: 0.0, performance.Auditory: 0.5, performance.Kinesthetic: 1.0},
	performance.Auditory:    {performance.Visual: 0.5, performance.Auditory: 0.0, performance.Kinesthetic: 1.0},
	performance.Kinesthetic: {performance.Visual: 1.0, performance.Auditory: 0.5, performance.Kinesthetic: 0.0},
}

// AdjustGrade compensates a grade earned under an incompatible teaching
// method. The result never exceeds 10; an unknown style on either side
// leaves the grade unchanged.
func AdjustGrade(raw float64, learner, method performance.LearningStyle) float64 {
	factor, ok := mismatch[learner][method]
	if !ok {
		return raw
	}
	return min(raw*(1+factor*AdjustmentWeight), 10.0)
}

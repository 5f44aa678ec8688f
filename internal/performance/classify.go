package performance

import "math"

// Label is the qualitative classification of a final score.
type Label string

const (
	LabelInsufficient Label = "Insufficient"
	LabelStruggling   Label = "Regular, struggling"
	LabelPotential    Label = "Regular, with potential"
	LabelOvercoming   Label = "Good, overcoming"
	LabelBalanced     Label = "Excellent, balanced"
)

func (l Label) String() string { return string(l) }

// Labels lists every label from lowest to highest band.
var Labels = []Label{LabelInsufficient, LabelStruggling, LabelPotential, LabelOvercoming, LabelBalanced}

var bands = []struct {
	below float64
	label Label
}{
	{30, LabelInsufficient},
	{45, LabelStruggling},
	{60, LabelPotential},
	{75, LabelOvercoming},
}

// Classify maps a score to its band; thresholds are checked in ascending
// order and the first match wins. NaN classifies as Insufficient.
func Classify(score float64) Label {
	if math.IsNaN(score) {
		return LabelInsufficient
	}
	for _, b := range bands {
		if score < b.below {
			return b.label
		}
	}
	return LabelBalanced
}

// ParseLabel is the inverse of Label.String.
func ParseLabel(s string) (Label, bool) {
	for _, l := range Labels {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}

package performance

import (
	"math"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidProfile is wrapped by every Profile.Validate failure.
var ErrInvalidProfile = errors.New("performance: invalid profile")

// Motivation is the three-valued category a teacher picks for a student.
type Motivation string

const (
	MotivationHigh   Motivation = "High"
	MotivationMedium Motivation = "Medium"
	MotivationLow    Motivation = "Low"
)

// ParseMotivation accepts High/Medium/Low in any case.
func ParseMotivation(s string) (Motivation, error) {
	switch normalize(s) {
	case "high":
		return MotivationHigh, nil
	case "medium":
		return MotivationMedium, nil
	case "low":
		return MotivationLow, nil
	}
	return "", errors.Wrapf(ErrInvalidProfile, "unknown motivation %q", s)
}

func (m *Motivation) UnmarshalText(b []byte) error {
	v, err := ParseMotivation(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Proxy is the crisp value fed to the motivation variable: 9, 5 or 2.
// An unset or unknown category yields 0.
func (m Motivation) Proxy() float64 {
	switch m {
	case MotivationHigh:
		return 9.0
	case MotivationMedium:
		return 5.0
	case MotivationLow:
		return 2.0
	}
	return 0
}

// FallbackWeight is the weight the weighted-average estimator gives the category.
func (m Motivation) FallbackWeight() float64 {
	switch m {
	case MotivationHigh:
		return 0.9
	case MotivationLow:
		return 0.2
	}
	return 0.5
}

func (m Motivation) Valid() bool { return m.Proxy() != 0 }

// LearningStyle is both a learner profile and a teaching method.
type LearningStyle string

const (
	Visual      LearningStyle = "Visual"
	Auditory    LearningStyle = "Auditory"
	Kinesthetic LearningStyle = "Kinesthetic"
)

func ParseLearningStyle(s string) (LearningStyle, error) {
	switch normalize(s) {
	case "visual":
		return Visual, nil
	case "auditory":
		return Auditory, nil
	case "kinesthetic":
		return Kinesthetic, nil
	}
	return "", errors.Wrapf(ErrInvalidProfile, "unknown learning style %q", s)
}

func (l *LearningStyle) UnmarshalText(b []byte) error {
	v, err := ParseLearningStyle(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Grades are the four component assessments, each 0-10.
type Grades struct {
	Theory1   float64 `json:"theory1"`
	Theory2   float64 `json:"theory2"`
	Practical float64 `json:"practical"`
	Group     float64 `json:"group"`
}

// Mean is the assessment grade fed to the grade-compatibility adjustment.
func (g Grades) Mean() float64 {
	return (g.Theory1 + g.Theory2 + g.Practical + g.Group) / 4
}

// Profile is everything collected about one student for one evaluation.
type Profile struct {
	StudentID      string        `json:"student_id"`
	Name           string        `json:"name"`
	Grades         Grades        `json:"grades"`
	Attendance     float64       `json:"attendance"`      // percent, 0-100
	Participation  float64       `json:"participation"`   // 0-10
	SocioEmotional float64       `json:"socio_emotional"` // 0-10
	Context        float64       `json:"context"`         // 0-10, lower is harder
	Motivation     Motivation    `json:"motivation"`
	LearnerStyle   LearningStyle `json:"learner_style"`
	TeachingMethod LearningStyle `json:"teaching_method"`
}

// Validate applies the input-form checks. The engine itself accepts any value.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.StudentID) == "" {
		return errors.Wrap(ErrInvalidProfile, "student_id is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.Wrap(ErrInvalidProfile, "name is required")
	}
	for _, f := range []struct {
		name     string
		v, limit float64
	}{
		{"grades.theory1", p.Grades.Theory1, 10},
		{"grades.theory2", p.Grades.Theory2, 10},
		{"grades.practical", p.Grades.Practical, 10},
		{"grades.group", p.Grades.Group, 10},
		{"attendance", p.Attendance, 100},
		{"participation", p.Participation, 10},
		{"socio_emotional", p.SocioEmotional, 10},
		{"context", p.Context, 10},
	} {
		if math.IsNaN(f.v) || f.v < 0 || f.v > f.limit {
			return errors.Wrapf(ErrInvalidProfile, "%s must be between 0 and %g, got %g", f.name, f.limit, f.v)
		}
	}
	if !p.Motivation.Valid() {
		return errors.Wrap(ErrInvalidProfile, "motivation must be High, Medium or Low")
	}
	if p.LearnerStyle == "" || p.TeachingMethod == "" {
		return errors.Wrap(ErrInvalidProfile, "learner_style and teaching_method are required")
	}
	return nil
}

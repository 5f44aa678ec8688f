package performance

// Inputs are the six raw indicators after grade adjustment, before fuzzification.
type Inputs struct {
	Grade          float64    `json:"grade"` // adjusted grade
	Attendance     float64    `json:"attendance"`
	Participation  float64    `json:"participation"`
	SocioEmotional float64    `json:"socio_emotional"`
	Context        float64    `json:"context"`
	Motivation     Motivation `json:"motivation"`
}

// Crisp maps the indicators onto the rule-base variable names.
func (in Inputs) Crisp() map[string]float64 {
	return map[string]float64{
		VarGrade:          in.Grade,
		VarAttendance:     in.Attendance,
		VarParticipation:  in.Participation,
		VarSocioEmotional: in.SocioEmotional,
		VarContext:        in.Context,
		VarMotivation:     in.Motivation.Proxy(),
	}
}

// Override identifies which extreme-input rule forced a score.
type Override int

const (
	OverrideNone Override = iota
	OverrideMaximal
	OverrideMinimal
)

func (o Override) String() string {
	switch o {
	case OverrideMaximal:
		return "all-maximal"
	case OverrideMinimal:
		return "all-minimal"
	}
	return "none"
}

// Override thresholds. The rule bases never reach full membership at the
// universe extremes, so these vectors are pinned to 100 and 0.
const (
	MaxScaleThreshold      = 9.7
	MaxAttendanceThreshold = 97.0
	MinScaleThreshold      = 1.0
	MinAttendanceThreshold = 20.0
)

// CheckOverride reports the forced score for an all-maximal or all-minimal
// vector. The motivation category is compared, not its numeric proxy.
func CheckOverride(in Inputs) (float64, Override, bool) {
	switch {
	case in.Grade >= MaxScaleThreshold &&
		in.Attendance >= MaxAttendanceThreshold &&
		in.Participation >= MaxScaleThreshold &&
		in.SocioEmotional >= MaxScaleThreshold &&
		in.Context >= MaxScaleThreshold &&
		in.Motivation == MotivationHigh:
		return 100.0, OverrideMaximal, true
	case in.Grade <= MinScaleThreshold &&
		in.Attendance <= MinAttendanceThreshold &&
		in.Participation <= MinScaleThreshold &&
		in.SocioEmotional <= MinScaleThreshold &&
		in.Context <= MinScaleThreshold &&
		in.Motivation == MotivationLow:
		return 0.0, OverrideMinimal, true
	}
	return 0, OverrideNone, false
}

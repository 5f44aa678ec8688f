// Package performance is the student-evaluation domain: the built-in rule
// bases, input profiles, the extreme-input override and the classifier.
package performance

// Linguistic variable names shared by every rule base.
const (
	VarGrade          = "grade"
	VarAttendance     = "attendance"
	VarParticipation  = "participation"
	VarSocioEmotional = "socioemotional"
	VarContext        = "context"
	VarMotivation     = "motivation"

	VarPerformance = "performance" // output
)

// Grade terms.
const (
	GradeInsufficient = "insufficient"
	GradeRegular      = "regular"
	GradeGood         = "good"
	GradeExcellent    = "excellent"
)

// Low/medium/high terms used by attendance, participation,
// socio-emotional skills and motivation.
const (
	Low    = "low"
	Medium = "medium"
	High   = "high"
)

// Socioeconomic context terms. Lower values mean a harder context.
const (
	ContextChallenging = "challenging"
	ContextModerate    = "moderate"
	ContextFavorable   = "favorable"
)

// Output terms, one per classification band.
const (
	OutInsufficient = "insufficient"
	OutStruggling   = "regular_struggling"
	OutPotential    = "regular_potential"
	OutOvercoming   = "good_overcoming"
	OutBalanced     = "excellent_balanced"
)

// InputVariables lists the input names in the order every rule base declares them.
var InputVariables = []string{
	VarGrade, VarAttendance, VarParticipation, VarSocioEmotional, VarContext, VarMotivation,
}

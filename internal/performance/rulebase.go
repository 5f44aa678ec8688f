package performance

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

// Built-in rule base names.
const (
	RuleBaseStandard = "standard"
	RuleBaseCompact  = "compact"
)

// ErrUnknownRuleBase is returned by RuleBase for names other than the built-ins.
var ErrUnknownRuleBase = errors.New("performance: unknown rule base")

var (
	scale      = fuzzy.Universe{Min: 0, Max: 10, Step: 0.1}
	percent    = fuzzy.Universe{Min: 0, Max: 100, Step: 0.1}
	scoreRange = fuzzy.Universe{Min: 0, Max: 100, Step: 0.1}
)

func gradeIs(t string) fuzzy.Expr         { return fuzzy.Is(VarGrade, t) }
func attendanceIs(t string) fuzzy.Expr    { return fuzzy.Is(VarAttendance, t) }
func participationIs(t string) fuzzy.Expr { return fuzzy.Is(VarParticipation, t) }
func socioIs(t string) fuzzy.Expr         { return fuzzy.Is(VarSocioEmotional, t) }
func contextIs(t string) fuzzy.Expr       { return fuzzy.Is(VarContext, t) }
func motivationIs(t string) fuzzy.Expr    { return fuzzy.Is(VarMotivation, t) }

func then(out string) fuzzy.Term { return fuzzy.T(VarPerformance, out) }

func rule(ante fuzzy.Expr, out string) fuzzy.Rule { return fuzzy.NewRule(ante, then(out)) }

func levels(name string, u fuzzy.Universe) fuzzy.Variable {
	return fuzzy.NewVariable(name, u).
		With(Low, fuzzy.Trapezoidal(0, 0, 3, 5)).
		With(Medium, fuzzy.Triangular(3, 5, 7)).
		With(High, fuzzy.Trapezoidal(5, 7, 10, 10))
}

func gradeVariable() fuzzy.Variable {
	return fuzzy.NewVariable(VarGrade, scale).
		With(GradeInsufficient, fuzzy.Trapezoidal(0, 0, 3, 5)).
		With(GradeRegular, fuzzy.Triangular(3, 5, 7)).
		With(GradeGood, fuzzy.Triangular(5, 7, 9)).
		With(GradeExcellent, fuzzy.Trapezoidal(7, 9, 10, 10))
}

// labelGroups names every rule "<group>.<n>" for firing diagnostics.
func labelGroups(groups []ruleGroup) []fuzzy.Rule {
	var out []fuzzy.Rule
	for _, g := range groups {
		for i, r := range g.rules {
			out = append(out, r.Named(fmt.Sprintf("%s.%d", g.name, i+1)))
		}
	}
	return out
}

type ruleGroup struct {
	name  string
	rules []fuzzy.Rule
}

// StandardRuleBase is the canonical 55-rule base. Its output sets are
// trapezoids and the all-maximal rule carries a double weight.
func StandardRuleBase() fuzzy.Definition {
	inputs := []fuzzy.Variable{
		gradeVariable(),
		fuzzy.NewVariable(VarAttendance, percent).
			With(Low, fuzzy.Trapezoidal(0, 0, 50, 70)).
			With(Medium, fuzzy.Triangular(50, 75, 90)).
			With(High, fuzzy.Trapezoidal(75, 95, 100, 100)),
		levels(VarParticipation, scale),
		levels(VarSocioEmotional, scale),
		fuzzy.NewVariable(VarContext, scale).
			With(ContextChallenging, fuzzy.Trapezoidal(0, 0, 3, 5)).
			With(ContextModerate, fuzzy.Triangular(3, 5, 7)).
			With(ContextFavorable, fuzzy.Trapezoidal(5, 7, 10, 10)),
		levels(VarMotivation, scale),
	}
	output := fuzzy.NewVariable(VarPerformance, scoreRange).
		With(OutInsufficient, fuzzy.Trapezoidal(0, 0, 20, 35)).
		With(OutStruggling, fuzzy.Trapezoidal(25, 35, 45, 55)).
		With(OutPotential, fuzzy.Trapezoidal(45, 55, 65, 75)).
		With(OutOvercoming, fuzzy.Trapezoidal(65, 75, 85, 95)).
		With(OutBalanced, fuzzy.Trapezoidal(85, 97, 100, 100))

	return fuzzy.Definition{
		Name:   RuleBaseStandard,
		Inputs: inputs,
		Output: output,
		Rules: labelGroups([]ruleGroup{
			{"grade-attendance", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(Medium)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(Low)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(High)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(Medium)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(Low)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(High)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(Medium)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(Low)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(High)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(Medium)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(Low)), OutInsufficient),
			}},
			{"grade-motivation", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeExcellent), motivationIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeExcellent), motivationIs(Medium)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeExcellent), motivationIs(Low)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeGood), motivationIs(High)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeGood), motivationIs(Medium)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeGood), motivationIs(Low)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), motivationIs(High)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), motivationIs(Medium)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), motivationIs(Low)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeInsufficient), motivationIs(High)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeInsufficient), motivationIs(Medium)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeInsufficient), motivationIs(Low)), OutInsufficient),
			}},
			{"participation", []fuzzy.Rule{
				rule(fuzzy.And(participationIs(High), gradeIs(GradeGood), attendanceIs(Medium)), OutOvercoming),
				rule(fuzzy.And(participationIs(High), gradeIs(GradeRegular), attendanceIs(High)), OutPotential),
				rule(fuzzy.And(participationIs(High), motivationIs(High), gradeIs(GradeRegular)), OutOvercoming),
				rule(fuzzy.And(participationIs(High), motivationIs(Low), gradeIs(GradeGood)), OutPotential),
				rule(fuzzy.And(participationIs(Low), gradeIs(GradeGood), motivationIs(High)), OutPotential),
				rule(fuzzy.And(participationIs(Low), gradeIs(GradeGood), motivationIs(Medium)), OutStruggling),
				rule(fuzzy.And(participationIs(Low), gradeIs(GradeRegular), motivationIs(Medium)), OutStruggling),
				rule(fuzzy.And(participationIs(Low), gradeIs(GradeRegular), motivationIs(Low)), OutInsufficient),
			}},
			{"context", []fuzzy.Rule{
				rule(fuzzy.And(contextIs(ContextChallenging), gradeIs(GradeGood), motivationIs(High)), OutBalanced),
				rule(fuzzy.And(contextIs(ContextChallenging), gradeIs(GradeRegular), motivationIs(High)), OutOvercoming),
				rule(fuzzy.And(contextIs(ContextChallenging), gradeIs(GradeInsufficient), motivationIs(High), participationIs(High)), OutPotential),
				rule(fuzzy.And(contextIs(ContextModerate), gradeIs(GradeGood), motivationIs(Medium)), OutOvercoming),
				rule(fuzzy.And(contextIs(ContextFavorable), gradeIs(GradeRegular), motivationIs(Low)), OutStruggling),
				rule(fuzzy.And(contextIs(ContextFavorable), gradeIs(GradeExcellent), motivationIs(High)), OutBalanced),
			}},
			{"socioemotional", []fuzzy.Rule{
				rule(fuzzy.And(socioIs(High), gradeIs(GradeRegular), motivationIs(Medium)), OutPotential),
				rule(fuzzy.And(socioIs(High), gradeIs(GradeGood), participationIs(High)), OutOvercoming),
				rule(fuzzy.And(socioIs(Low), participationIs(High), fuzzy.Or(gradeIs(GradeRegular), gradeIs(GradeGood))), OutOvercoming),
				rule(fuzzy.And(socioIs(Low), gradeIs(GradeRegular), participationIs(Low)), OutStruggling),
				rule(fuzzy.And(socioIs(Medium), gradeIs(GradeGood), motivationIs(Medium)), OutOvercoming),
				rule(fuzzy.And(socioIs(Medium), gradeIs(GradeRegular), motivationIs(Low)), OutStruggling),
			}},
			{"combined", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(High), participationIs(High), motivationIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(High), participationIs(High), motivationIs(High)), OutOvercoming),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(Medium), participationIs(Medium), motivationIs(Medium)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeRegular), attendanceIs(Low), participationIs(Low), motivationIs(Low)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(Medium), participationIs(Low), motivationIs(Low)), OutStruggling),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(High), participationIs(High), motivationIs(High)), OutPotential),
			}},
			{"extremes", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(High), participationIs(High),
					socioIs(High), motivationIs(High), contextIs(ContextFavorable)), OutBalanced).WithWeight(2.0),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(Low), participationIs(Low),
					socioIs(Low), motivationIs(Low)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeGood), contextIs(ContextChallenging), socioIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeRegular), motivationIs(High), participationIs(High)), OutPotential),
				rule(fuzzy.And(attendanceIs(Low), participationIs(High), motivationIs(High), gradeIs(GradeRegular)), OutPotential),
			}},
		}),
	}
}

// CompactRuleBase is the smaller 14-rule base with Gaussian middle output
// bands. It leaves mid-range profiles uncovered, so it returns
// fuzzy.ErrNoRuleFired far more often than the standard base.
func CompactRuleBase() fuzzy.Definition {
	inputs := []fuzzy.Variable{
		gradeVariable(),
		fuzzy.NewVariable(VarAttendance, percent).
			With(Low, fuzzy.Trapezoidal(0, 0, 50, 70)).
			With(Medium, fuzzy.Triangular(50, 75, 85)).
			With(High, fuzzy.Trapezoidal(75, 90, 100, 100)),
		levels(VarParticipation, scale),
		levels(VarSocioEmotional, scale),
		fuzzy.NewVariable(VarContext, scale).
			With(ContextChallenging, fuzzy.Trapezoidal(0, 0, 4, 6)).
			With(ContextModerate, fuzzy.Trapezoidal(4, 6, 7, 9)).
			With(ContextFavorable, fuzzy.Trapezoidal(7, 9, 10, 10)),
		levels(VarMotivation, scale),
	}
	output := fuzzy.NewVariable(VarPerformance, scoreRange).
		With(OutInsufficient, fuzzy.Trapezoidal(0, 0, 30, 45)).
		With(OutStruggling, fuzzy.Gaussian(40, 7)).
		With(OutPotential, fuzzy.Gaussian(55, 7)).
		With(OutOvercoming, fuzzy.Gaussian(70, 7)).
		With(OutBalanced, fuzzy.Trapezoidal(75, 90, 100, 100))

	return fuzzy.Definition{
		Name:   RuleBaseCompact,
		Inputs: inputs,
		Output: output,
		Rules: labelGroups([]ruleGroup{
			{"academic", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeGood), attendanceIs(High), participationIs(High)), OutOvercoming),
			}},
			{"context", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeGood), contextIs(ContextChallenging), motivationIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeRegular), contextIs(ContextChallenging), motivationIs(High)), OutOvercoming),
			}},
			{"socioemotional", []fuzzy.Rule{
				rule(fuzzy.And(socioIs(High), participationIs(High), fuzzy.Or(gradeIs(GradeRegular), gradeIs(GradeGood))), OutOvercoming),
			}},
			{"difficulty", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(Low)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeInsufficient), motivationIs(Low)), OutInsufficient),
				rule(fuzzy.And(motivationIs(High), participationIs(High), gradeIs(GradeRegular)), OutPotential),
				rule(fuzzy.And(attendanceIs(Low), fuzzy.Not(motivationIs(High))), OutStruggling),
			}},
			{"progress", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeRegular), motivationIs(High), participationIs(High)), OutPotential),
				rule(fuzzy.And(gradeIs(GradeGood), contextIs(ContextChallenging), socioIs(High)), OutBalanced),
			}},
			{"extremes", []fuzzy.Rule{
				rule(fuzzy.And(gradeIs(GradeExcellent), attendanceIs(High), participationIs(High),
					socioIs(High), motivationIs(High)), OutBalanced),
				rule(fuzzy.And(gradeIs(GradeInsufficient), attendanceIs(Low), participationIs(Low),
					socioIs(Low), motivationIs(Low)), OutInsufficient),
				rule(fuzzy.And(gradeIs(GradeGood), socioIs(High), participationIs(High)), OutBalanced),
			}},
		}),
	}
}

// RuleBase returns a built-in definition by name.
func RuleBase(name string) (fuzzy.Definition, error) {
	switch normalize(name) {
	case RuleBaseStandard, "":
		return StandardRuleBase(), nil
	case RuleBaseCompact:
		return CompactRuleBase(), nil
	}
	return fuzzy.Definition{}, errors.Wrapf(ErrUnknownRuleBase, "%q", name)
}

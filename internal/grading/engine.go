package grading

import (
	"context"
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
)

// Source tells where a final score came from.
type Source string

const (
	SourceFuzzy    Source = "fuzzy"    // centroid of the aggregated set
	SourceOverride Source = "override" // extreme-input rule
	SourceFallback Source = "fallback" // estimator after no rule fired
)

// RuleFiring is one rule that contributed to the output set.
type RuleFiring struct {
	Index    int     `json:"index"`
	Rule     string  `json:"rule"`
	Strength float64 `json:"strength"`
}

// Result is the outcome of evaluating one student.
type Result struct {
	Score    float64           `json:"score"`
	Label    performance.Label `json:"label"`
	Source   Source            `json:"source"`
	Override string            `json:"override,omitempty"`
	RuleBase string            `json:"rule_base"`

	MeanGrade     float64            `json:"mean_grade"`
	AdjustedGrade float64            `json:"adjusted_grade"`
	Inputs        performance.Inputs `json:"inputs"`

	// Centroid is the raw inference output; nil when no rule fired.
	Centroid *float64 `json:"centroid,omitempty"`
	// OutputMemberships is the degree of Score in every output term.
	OutputMemberships []fuzzy.TermDegree `json:"output_memberships"`
	Firing            []RuleFiring       `json:"firing,omitempty"`
	Curve             []fuzzy.Point      `json:"-"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Grader evaluates student profiles.
type Grader interface {
	Grade(ctx context.Context, p performance.Profile) (Result, error)
}

// Observer receives one call per finished evaluation.
type Observer interface {
	ObserveEvaluation(ruleBase string, res Result, elapsed time.Duration)
	ObserveNoRuleFired(ruleBase string)
}

type Clock func() time.Time

// Engine options

type Option func(*config)

type config struct {
	Fallback Estimator // used only when no rule fired
	Logger   *zap.Logger
	Observer Observer
	Now      Clock
}

func WithFallback(e Estimator) Option { return func(c *config) { c.Fallback = e } }
func WithLogger(l *zap.Logger) Option { return func(c *config) { c.Logger = l } }
func WithMetrics(o Observer) Option   { return func(c *config) { c.Observer = o } }
func WithClock(now Clock) Option      { return func(c *config) { c.Now = now } }

// Engine runs the full evaluation pipeline on one immutable fuzzy system.
type Engine struct {
	sys *fuzzy.System
	cfg config
}

// New wraps a built system. Without WithFallback a profile no rule covers
// fails with fuzzy.ErrNoRuleFired.
func New(sys *fuzzy.System, opts ...Option) *Engine {
	cfg := config{Now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{sys: sys, cfg: cfg}
}

// NewForRuleBase builds the named built-in rule base and wraps it.
func NewForRuleBase(name string, opts ...Option) (*Engine, error) {
	def, err := performance.RuleBase(name)
	if err != nil {
		return nil, err
	}
	sys, err := fuzzy.Build(def)
	if err != nil {
		return nil, errors.Wrapf(err, "build rule base %q", def.Name)
	}
	return New(sys, opts...), nil
}

func (e *Engine) System() *fuzzy.System { return e.sys }

// Grade averages the component grades, applies the learning-style
// adjustment and evaluates the resulting inputs.
func (e *Engine) Grade(ctx context.Context, p performance.Profile) (Result, error) {
	mean := p.Grades.Mean()
	in := performance.Inputs{
		Grade:          AdjustGrade(mean, p.LearnerStyle, p.TeachingMethod),
		Attendance:     p.Attendance,
		Participation:  p.Participation,
		SocioEmotional: p.SocioEmotional,
		Context:        p.Context,
		Motivation:     p.Motivation,
	}
	res, err := e.Evaluate(ctx, in)
	res.MeanGrade = mean
	if err != nil {
		return res, errors.Wrapf(err, "student %s", p.StudentID)
	}
	e.cfg.Logger.Debug("student evaluated",
		zap.String(logging.FieldStudentID, p.StudentID),
		zap.Float64(logging.FieldScore, res.Score),
		zap.String(logging.FieldLabel, res.Label.String()),
		zap.String(logging.FieldSource, string(res.Source)),
	)
	return res, nil
}

// Evaluate scores already-adjusted inputs. On fuzzy.ErrNoRuleFired with no
// override or fallback the partial Result (curve, firing) is returned with
// the error.
func (e *Engine) Evaluate(ctx context.Context, in performance.Inputs) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := e.cfg.Now()
	out := Result{
		RuleBase:      e.sys.Name(),
		AdjustedGrade: in.Grade,
		Inputs:        in,
		EvaluatedAt:   start,
	}

	fr, err := fuzzy.Evaluate(e.sys, in.Crisp())
	noFire := errors.Is(err, fuzzy.ErrNoRuleFired)
	if err != nil && !noFire {
		return out, errors.Wrap(err, "grading: evaluate")
	}
	out.Curve = fr.Curve
	out.Firing = e.firing(fr.Firing)
	if !noFire {
		v := fr.Value
		out.Centroid = &v
		out.Score = v
		out.Source = SourceFuzzy
	}

	switch score, kind, ok := performance.CheckOverride(in); {
	case ok:
		out.Score = score
		out.Source = SourceOverride
		out.Override = kind.String()
	case noFire && e.cfg.Fallback != nil:
		out.Score = e.cfg.Fallback.Estimate(in)
		out.Source = SourceFallback
		e.cfg.Logger.Warn("no rule fired, using fallback estimator",
			zap.String(logging.FieldRuleBase, out.RuleBase),
			zap.Float64(logging.FieldScore, out.Score),
		)
	case noFire:
		if e.cfg.Observer != nil {
			e.cfg.Observer.ObserveNoRuleFired(out.RuleBase)
		}
		return out, errors.Wrap(fuzzy.ErrNoRuleFired, "grading")
	}
	if noFire && e.cfg.Observer != nil {
		e.cfg.Observer.ObserveNoRuleFired(out.RuleBase)
	}

	out.Score = clampScore(out.Score)
	out.Label = performance.Classify(out.Score)
	out.OutputMemberships = e.sys.OutputDegrees(out.Score)
	if e.cfg.Observer != nil {
		e.cfg.Observer.ObserveEvaluation(out.RuleBase, out, e.cfg.Now().Sub(start))
	}
	return out, nil
}

func (e *Engine) firing(strengths []float64) []RuleFiring {
	rules := e.sys.Rules()
	var out []RuleFiring
	for i, s := range strengths {
		if s == 0 {
			continue
		}
		name := rules[i].Label
		if name == "" {
			name = rules[i].String()
		}
		out = append(out, RuleFiring{Index: i, Rule: name, Strength: s})
	}
	return out
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// Package metrics exports evaluation counters and latencies to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
)

const (
	EvaluationsN = "fuzzyeval_evaluations_total"
	EvaluationsH = "The total number of finished evaluations by rule base, source and label"

	EvaluationSecondsN = "fuzzyeval_evaluation_duration_seconds"
	EvaluationSecondsH = "Time spent evaluating one student"

	ScoresN = "fuzzyeval_scores"
	ScoresH = "Distribution of final scores"

	NoRuleFiredN = "fuzzyeval_no_rule_fired_total"
	NoRuleFiredH = "The total number of evaluations where no rule fired"
)

// Collector implements grading.Observer.
type Collector struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	scores      *prometheus.HistogramVec
	noRuleFired *prometheus.CounterVec
}

var _ grading.Observer = (*Collector)(nil)

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		evaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: EvaluationsN,
			Help: EvaluationsH,
		}, []string{"rule_base", "source", "label"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    EvaluationSecondsN,
			Help:    EvaluationSecondsH,
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"rule_base"}),
		scores: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    ScoresN,
			Help:    ScoresH,
			Buckets: []float64{30, 45, 60, 75, 100},
		}, []string{"rule_base"}),
		noRuleFired: f.NewCounterVec(prometheus.CounterOpts{
			Name: NoRuleFiredN,
			Help: NoRuleFiredH,
		}, []string{"rule_base"}),
	}
}

func (c *Collector) ObserveEvaluation(ruleBase string, res grading.Result, elapsed time.Duration) {
	c.evaluations.WithLabelValues(ruleBase, string(res.Source), res.Label.String()).Inc()
	c.duration.WithLabelValues(ruleBase).Observe(elapsed.Seconds())
	c.scores.WithLabelValues(ruleBase).Observe(res.Score)
}

func (c *Collector) ObserveNoRuleFired(ruleBase string) {
	c.noRuleFired.WithLabelValues(ruleBase).Inc()
}

// Handler serves g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

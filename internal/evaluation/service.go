package evaluation

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/storage"
)

// Service grades profiles and records the outcome.
type Service struct {
	grader  grading.Grader
	store   Store
	curves  *storage.CurveStore
	log     *zap.Logger
	newID   func() string
	workers int
}

type ServiceOption func(*Service)

// WithCurveStore keeps each evaluation's aggregated curve.
func WithCurveStore(c *storage.CurveStore) ServiceOption { return func(s *Service) { s.curves = c } }
func WithServiceLogger(l *zap.Logger) ServiceOption      { return func(s *Service) { s.log = l } }
func WithIDs(next func() string) ServiceOption           { return func(s *Service) { s.newID = next } }
func WithWorkers(n int) ServiceOption                    { return func(s *Service) { s.workers = n } }

func NewService(g grading.Grader, store Store, opts ...ServiceOption) *Service {
	s := &Service{grader: g, store: store, log: zap.NewNop(), newID: uuid.NewString}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Evaluate validates and grades p, then persists the record and its curve.
// Nothing is stored when grading fails.
func (s *Service) Evaluate(ctx context.Context, p performance.Profile, createdBy string) (Record, grading.Result, error) {
	if err := p.Validate(); err != nil {
		return Record{}, grading.Result{}, err
	}
	res, err := s.grader.Grade(ctx, p)
	if err != nil {
		return Record{}, res, err
	}
	rec, err := s.record(ctx, p, res, createdBy)
	return rec, res, err
}

func (s *Service) record(ctx context.Context, p performance.Profile, res grading.Result, createdBy string) (Record, error) {
	rec := NewRecord(s.newID(), p, res, createdBy)
	if err := s.store.Save(ctx, rec); err != nil {
		return Record{}, err
	}
	if s.curves != nil && len(res.Curve) > 0 {
		// curve failures are logged, not returned
		if err := s.curves.Save(rec.ID, res.Curve); err != nil {
			s.log.Warn("curve not stored", zap.String(logging.FieldEvaluationID, rec.ID), zap.Error(err))
		}
	}
	s.log.Info("evaluation recorded",
		zap.String(logging.FieldEvaluationID, rec.ID),
		zap.String(logging.FieldStudentID, rec.StudentID),
		zap.Float64(logging.FieldScore, rec.Score),
		zap.String(logging.FieldLabel, rec.Label.String()),
		zap.String(logging.FieldSource, string(rec.Source)),
	)
	return rec, nil
}

// BatchOutcome is the result for profiles[Index]: a record or an error.
type BatchOutcome struct {
	Index  int     `json:"index"`
	Record *Record `json:"record,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}

// EvaluateBatch grades profiles concurrently and persists each success.
// Outcomes are in input order; the error is non-nil only when ctx ends.
func (s *Service) EvaluateBatch(ctx context.Context, profiles []performance.Profile, createdBy string) ([]BatchOutcome, error) {
	items, err := grading.Batch(ctx, grading.Validated(s.grader), profiles, s.workers)
	if err != nil {
		return nil, err
	}
	out := make([]BatchOutcome, len(items))
	ok := 0
	for i, it := range items {
		out[i] = BatchOutcome{Index: i}
		if it.Err == nil {
			var rec Record
			rec, it.Err = s.record(ctx, profiles[i], it.Result, createdBy)
			if it.Err == nil {
				out[i].Record = &rec
				ok++
			}
		}
		if it.Err != nil {
			out[i].Err = it.Err
			out[i].Error = it.Err.Error()
		}
	}
	s.log.Info("batch evaluated",
		zap.Int(logging.FieldCount, len(profiles)),
		zap.Int("recorded", ok),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) { return s.store.Get(ctx, id) }

func (s *Service) List(ctx context.Context, opts ListOpts) ([]Record, error) {
	return s.store.List(ctx, opts)
}

// Curve returns the stored aggregated set of an evaluation.
func (s *Service) Curve(id string) ([]fuzzy.Point, error) {
	if s.curves == nil {
		return nil, errors.Wrap(storage.ErrNotFound, "curve storage disabled")
	}
	return s.curves.Load(id)
}

package evaluation

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/db"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	syncx "github.com/mind-engage/mindengage-fuzzyeval/internal/sync"
)

// SQLStore works on both sqlite and postgres; queries use $n placeholders.
type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo
}

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn, events: syncx.NewEventRepo(conn)}
}

const selectColumns = `id,student_id,student_name,rule_base,profile_json,inputs_json,
	mean_grade,adjusted_grade,centroid,score,label,source,override,created_by,created_at`

// Save inserts r and its EvaluationRecorded event in one transaction.
func (s *SQLStore) Save(ctx context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("evaluation: empty id")
	}
	pj, err := json.Marshal(r.Profile)
	if err != nil {
		return errors.Wrap(err, "evaluation: encode profile")
	}
	ij, err := json.Marshal(r.Inputs)
	if err != nil {
		return errors.Wrap(err, "evaluation: encode inputs")
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "evaluation: encode event")
	}
	var centroid sql.NullFloat64
	if r.Centroid != nil {
		centroid = sql.NullFloat64{Float64: *r.Centroid, Valid: true}
	}

	return db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO evaluations (`+selectColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`,
			r.ID, r.StudentID, r.Name, r.RuleBase, string(pj), string(ij),
			r.MeanGrade, r.AdjustedGrade, centroid, r.Score,
			string(r.Label), string(r.Source), r.Override, r.CreatedBy, r.CreatedAt,
		); err != nil {
			return errors.Wrapf(err, "evaluation: insert %s", r.ID)
		}
		return s.events.Append(ctx, tx, syncx.Event{
			Type:      syncx.TypeEvaluationRecorded,
			Key:       r.ID,
			DataJSON:  string(payload),
			CreatedAt: r.CreatedAt,
		})
	})
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM evaluations WHERE id=$1`, id)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.Wrapf(ErrNotFound, "%s", id)
	}
	return r, err
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, v string) {
		if v == "" {
			return
		}
		args = append(args, v)
		where = append(where, col+"=$"+strconv.Itoa(len(args)))
	}
	add("student_id", opts.StudentID)
	add("label", opts.Label)
	add("source", opts.Source)

	q := `SELECT ` + selectColumns + ` FROM evaluations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, opts.limit(), opts.offset())
	q += ` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "evaluation: list")
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "evaluation: list rows")
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r             Record
		pj, ij        string
		label, source string
		centroid      sql.NullFloat64
	)
	if err := sc.Scan(&r.ID, &r.StudentID, &r.Name, &r.RuleBase, &pj, &ij,
		&r.MeanGrade, &r.AdjustedGrade, &centroid, &r.Score,
		&label, &source, &r.Override, &r.CreatedBy, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	if err := json.Unmarshal([]byte(pj), &r.Profile); err != nil {
		return Record{}, errors.Wrapf(err, "evaluation %s: decode profile", r.ID)
	}
	if err := json.Unmarshal([]byte(ij), &r.Inputs); err != nil {
		return Record{}, errors.Wrapf(err, "evaluation %s: decode inputs", r.ID)
	}
	if centroid.Valid {
		v := centroid.Float64
		r.Centroid = &v
	}
	r.Label = performance.Label(label)
	r.Source = grading.Source(source)
	return r, nil
}

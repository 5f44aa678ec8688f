// Package syncx keeps the append-only event log that mirrors every
// recorded evaluation, so another site can replay history in order.
package syncx

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/db"
)

const (
	TypeEvaluationRecorded = "EvaluationRecorded"

	defaultSite  = "local"
	defaultLimit = 100
)

type Event struct {
	Seq       int64  `json:"seq"`
	SiteID    string `json:"site_id"`
	Type      string `json:"type"`
	Key       string `json:"key"`
	DataJSON  string `json:"data"`
	CreatedAt int64  `json:"created_at"`
}

type EventRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, now: time.Now} }

// Append writes e through ex, which may be a transaction shared with the
// write the event describes. A nil ex uses the repo's DB.
func (r *EventRepo) Append(ctx context.Context, ex db.Execer, e Event) error {
	if ex == nil {
		ex = r.db
	}
	if e.SiteID == "" {
		e.SiteID = defaultSite
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = r.now().Unix()
	}
	_, err := ex.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, e.CreatedAt)
	return errors.Wrap(err, "event log: append")
}

// Since returns up to limit events with Seq > after, oldest first.
func (r *EventRepo) Since(ctx context.Context, after int64, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, typ, key, data, created_at FROM event_log
		 WHERE seq > $1 ORDER BY seq LIMIT $2`, after, limit)
	if err != nil {
		return nil, errors.Wrap(err, "event log: query")
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.Type, &e.Key, &e.DataJSON, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "event log: scan")
		}
		out = append(out, e)
	}
	return out, errors.Wrap(rows.Err(), "event log: rows")
}

package evaluation

import (
	"context"

	"github.com/cockroachdb/errors"
)

var ErrNotFound = errors.New("evaluation not found")

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type ListOpts struct {
	StudentID string // filter by student
	Label     string // optional: classification label
	Source    string // optional: fuzzy|override|fallback
	Limit     int
	Offset    int
}

func (o ListOpts) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultLimit
	case o.Limit > MaxLimit:
		return MaxLimit
	}
	return o.Limit
}

func (o ListOpts) offset() int {
	if o.Offset < 0 {
		return 0
	}
	return o.Offset
}

// Store persists evaluation history. List returns newest first.
type Store interface {
	Save(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, opts ListOpts) ([]Record, error)
}

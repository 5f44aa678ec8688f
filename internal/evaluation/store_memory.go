package evaluation

import (
	"context"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
)

type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string // insertion order, breaks created_at ties
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[string]Record{}}
}

func (m *MemoryStore) Save(_ context.Context, r Record) error {
	if r.ID == "" {
		return errors.New("evaluation: empty id")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[r.ID]; ok {
		return errors.Newf("evaluation %s already exists", r.ID)
	}
	m.records[r.ID] = r
	m.order = append(m.order, r.ID)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.records[id]
	if !ok {
		return Record{}, errors.Wrapf(ErrNotFound, "%s", id)
	}
	return r, nil
}

func (m *MemoryStore) List(_ context.Context, opts ListOpts) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Record
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.records[m.order[i]]
		if opts.StudentID != "" && r.StudentID != opts.StudentID {
			continue
		}
		if opts.Label != "" && string(r.Label) != opts.Label {
			continue
		}
		if opts.Source != "" && string(r.Source) != opts.Source {
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })

	off := opts.offset()
	if off >= len(out) {
		return []Record{}, nil
	}
	out = out[off:]
	if n := opts.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

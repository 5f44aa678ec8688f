package storage

import (
	"bytes"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
)

// CurveStore keeps the aggregated output set of each evaluation as a JSON
// blob keyed by evaluation id.
type CurveStore struct{ blobs BlobStore }

func NewCurveStore(b BlobStore) *CurveStore { return &CurveStore{blobs: b} }

func curveKey(id string) string { return path.Join("curves", id+".json") }

func (c *CurveStore) Save(id string, curve []fuzzy.Point) error {
	buf, err := json.Marshal(curve)
	if err != nil {
		return errors.Wrap(err, "storage: encode curve")
	}
	_, err = c.blobs.Put(curveKey(id), bytes.NewReader(buf))
	return err
}

// Load returns ErrNotFound when no curve was stored for id.
func (c *CurveStore) Load(id string) ([]fuzzy.Point, error) {
	rc, err := c.blobs.Get(curveKey(id))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var out []fuzzy.Point
	if err := json.NewDecoder(rc).Decode(&out); err != nil {
		return nil, errors.Wrapf(err, "storage: decode curve %s", id)
	}
	return out, nil
}

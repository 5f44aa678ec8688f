package http

import (
	"bytes"
	"math"
	"net/http"
	"strconv"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rulefile"
)

// GET /rulebase?format=json|toml|yaml
func RuleBaseHandler(sys *fuzzy.System) http.HandlerFunc {
	doc := rulefile.FromDefinition(sys.Definition())
	return func(w http.ResponseWriter, r *http.Request) {
		f := r.URL.Query().Get("format")
		switch f {
		case "", "json":
			writeJSON(w, http.StatusOK, doc)
			return
		case string(rulefile.TOML), string(rulefile.YAML):
		default:
			http.Error(w, "format must be json, toml or yaml", http.StatusBadRequest)
			return
		}
		var buf bytes.Buffer
		if err := rulefile.Encode(&buf, doc, rulefile.Format(f)); err != nil {
			writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/"+f)
		_, _ = w.Write(buf.Bytes())
	}
}

// GET /classify?score=72.5
func ClassifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		score, err := strconv.ParseFloat(r.URL.Query().Get("score"), 64)
		if err != nil || math.IsNaN(score) || math.IsInf(score, 0) {
			http.Error(w, "score must be a number", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"score": score,
			"label": performance.Classify(score),
		})
	}
}

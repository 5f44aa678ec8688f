package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/evaluation"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/fuzzy"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/storage"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, performance.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, fuzzy.ErrNoRuleFired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, evaluation.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		logging.Logger().Error("request failed",
			zap.String(logging.FieldPath, r.URL.Path), zap.Error(err))
		msg = http.StatusText(code)
	}
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}

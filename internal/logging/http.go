package logging

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request. It replaces chi's
// middleware.Logger and must run after middleware.RequestID.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String(FieldRequestID, middleware.GetReqID(r.Context())),
					zap.String(FieldMethod, r.Method),
					zap.String(FieldPath, r.URL.Path),
					zap.Int(FieldStatus, ww.Status()),
					zap.Int64(FieldDurationMS, time.Since(start).Milliseconds()),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

package logging_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/logging"
)

func TestNew_Levels(t *testing.T) {
	l, err := logging.New(true, "debug")
	require.NoError(t, err)
	require.True(t, l.Core().Enabled(zap.DebugLevel))

	l, err = logging.New(false, "")
	require.NoError(t, err)
	require.False(t, l.Core().Enabled(zap.DebugLevel))
	require.True(t, l.Core().Enabled(zap.InfoLevel))

	_, err = logging.New(false, "loud")
	require.Error(t, err)
}

func TestProcessLogger(t *testing.T) {
	require.NotNil(t, logging.Logger())
	prev := logging.Logger()
	defer logging.SetLogger(prev)

	core, logs := observer.New(zap.InfoLevel)
	logging.SetLogger(zap.New(core))
	logging.Logger().Info("hello")
	require.Equal(t, 1, logs.Len())
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := middleware.RequestID(logging.RequestLogger(zap.New(core))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/healthz", fields[logging.FieldPath])
	require.EqualValues(t, http.StatusTeapot, fields[logging.FieldStatus])
	require.NotEmpty(t, fields[logging.FieldRequestID])
}

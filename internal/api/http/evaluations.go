package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-fuzzyeval/internal/evaluation"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/grading"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/performance"
	"github.com/mind-engage/mindengage-fuzzyeval/internal/rbac"
)

type evaluationResp struct {
	evaluation.Record
	Result grading.Result `json:"result"`
}

// POST /evaluations  body: performance.Profile
func CreateEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p performance.Profile
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		rec, res, err := svc.Evaluate(r.Context(), p, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, evaluationResp{Record: rec, Result: res})
	}
}

type batchReq struct {
	Profiles []performance.Profile `json:"profiles"`
}

// POST /evaluations/batch  { "profiles": [...] }
// Always 200 once the batch ran; failures are reported per item.
func BatchEvaluationHandler(svc *evaluation.Service, maxItems int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req batchReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.Profiles) == 0 {
			http.Error(w, "profiles required", http.StatusBadRequest)
			return
		}
		if maxItems > 0 && len(req.Profiles) > maxItems {
			http.Error(w, "too many profiles", http.StatusRequestEntityTooLarge)
			return
		}
		out, err := svc.EvaluateBatch(r.Context(), req.Profiles, rbac.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": out})
	}
}

// GET /evaluations?student_id=...&label=...&source=...&limit=50&offset=0
// RBAC:
// - evaluation:view-all may filter freely
// - evaluation:view-own only sees the caller's own records (student_id is forced to subject)
func ListEvaluationsHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		opts := evaluation.ListOpts{
			StudentID: strings.TrimSpace(q.Get("student_id")),
			Label:     strings.TrimSpace(q.Get("label")),
			Source:    strings.TrimSpace(q.Get("source")),
			Limit:     parseIntDefault(q.Get("limit"), evaluation.DefaultLimit),
			Offset:    parseIntDefault(q.Get("offset"), 0),
		}
		if !rbac.Can(r.Context(), rbac.PermEvaluationViewAll) {
			opts.StudentID = rbac.SubjectFromContext(r.Context())
		}
		list, err := svc.List(r.Context(), opts)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// loadVisible fetches {id} and hides records the caller may not see.
func loadVisible(svc *evaluation.Service, w http.ResponseWriter, r *http.Request) (evaluation.Record, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return evaluation.Record{}, false
	}
	rec, err := svc.Get(r.Context(), id)
	if err == nil && !rbac.Can(r.Context(), rbac.PermEvaluationViewAll) &&
		rec.StudentID != rbac.SubjectFromContext(r.Context()) {
		err = evaluation.ErrNotFound
	}
	if err != nil {
		writeError(w, r, err)
		return evaluation.Record{}, false
	}
	return rec, true
}

// GET /evaluations/{id}
func GetEvaluationHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := loadVisible(svc, w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// GET /evaluations/{id}/curve
func GetCurveHandler(svc *evaluation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := loadVisible(svc, w, r)
		if !ok {
			return
		}
		curve, err := svc.Curve(rec.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": rec.ID, "points": curve})
	}
}

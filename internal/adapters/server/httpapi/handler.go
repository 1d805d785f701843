// Package httpapi provides the REST HTTP adapter for the analytics engine.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/hylla/sikte/internal/analytics"
	"github.com/hylla/sikte/internal/domain"
	"github.com/hylla/sikte/internal/timeutil"
)

// maxRequestBodyBytes limits decoded JSON payload size for fail-closed
// request handling.
const maxRequestBodyBytes int64 = 1 << 20

// ErrorResponse is the canonical error envelope for API failures.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type handler struct {
	store    *analytics.Store
	validate *validator.Validate
}

// NewRouter mounts the analytics API routes.
func NewRouter(store *analytics.Store) chi.Router {
	h := &handler{
		store:    store,
		validate: validator.New(),
	}
	r := chi.NewRouter()
	r.Post("/progress", h.appendProgress)
	r.Post("/sessions", h.appendSession)
	r.Post("/goals/sync", h.syncGoals)
	r.Get("/goals/{goalID}/history", h.goalHistory)
	r.Get("/stats", h.productivityStats)
	r.Get("/categories", h.categoryAnalytics)
	r.Get("/report", h.generateReport)
	r.Get("/export", h.exportLog)
	return r
}

type progressRequest struct {
	GoalID string     `json:"goal_id" validate:"required"`
	Date   *time.Time `json:"date"`
	Value  float64    `json:"value"`
	Notes  string     `json:"notes"`
}

type progressResponse struct {
	ID     string    `json:"id"`
	GoalID string    `json:"goal_id"`
	Date   time.Time `json:"date"`
	Value  float64   `json:"value"`
	Notes  string    `json:"notes,omitempty"`
}

func (h *handler) appendProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !h.decode(w, r, &req) {
		return
	}
	in := domain.ProgressInput{
		GoalID: req.GoalID,
		Value:  req.Value,
		Notes:  req.Notes,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	entry, err := h.store.AppendProgress(r.Context(), in)
	if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	// A persist failure keeps the in-memory append; report it without
	// discarding the stored entry.
	status := http.StatusCreated
	if err != nil {
		status = http.StatusAccepted
		w.Header().Set("Warning", `199 - "your latest change may not have been saved"`)
	}
	writeJSON(w, status, progressResponse{
		ID:     entry.ID,
		GoalID: entry.GoalID,
		Date:   entry.Date,
		Value:  entry.Value,
		Notes:  entry.Notes,
	})
}

type sessionRequest struct {
	Date      *time.Time `json:"date"`
	Duration  int        `json:"duration" validate:"gte=0"`
	GoalID    string     `json:"goal_id"`
	Type      string     `json:"type" validate:"omitempty,oneof=work break focus"`
	Completed bool       `json:"completed"`
}

type sessionResponse struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Duration  int       `json:"duration"`
	GoalID    string    `json:"goal_id,omitempty"`
	Type      string    `json:"type"`
	Completed bool      `json:"completed"`
}

func (h *handler) appendSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !h.decode(w, r, &req) {
		return
	}
	in := domain.SessionInput{
		Duration:  req.Duration,
		GoalID:    req.GoalID,
		Type:      domain.SessionType(req.Type),
		Completed: req.Completed,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	session, err := h.store.AppendSession(r.Context(), in)
	if err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	status := http.StatusCreated
	if err != nil {
		status = http.StatusAccepted
		w.Header().Set("Warning", `199 - "your latest change may not have been saved"`)
	}
	writeJSON(w, status, sessionResponse{
		ID:        session.ID,
		Date:      session.Date,
		Duration:  session.Duration,
		GoalID:    session.GoalID,
		Type:      string(session.Type),
		Completed: session.Completed,
	})
}

type goalPayload struct {
	ID           string     `json:"id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Category     string     `json:"category"`
	TargetValue  float64    `json:"target_value"`
	CurrentValue float64    `json:"current_value" validate:"gte=0"`
	Unit         string     `json:"unit"`
	Deadline     *time.Time `json:"deadline"`
	Priority     string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Status       string     `json:"status" validate:"omitempty,oneof=active completed paused"`
	CreatedAt    *time.Time `json:"created_at"`
	Archived     bool       `json:"archived"`
}

type syncGoalsRequest struct {
	Goals []goalPayload `json:"goals" validate:"required,dive"`
}

func (h *handler) syncGoals(w http.ResponseWriter, r *http.Request) {
	var req syncGoalsRequest
	if !h.decode(w, r, &req) {
		return
	}
	goals := make([]domain.Goal, 0, len(req.Goals))
	for _, g := range req.Goals {
		goal := domain.Goal{
			ID:           g.ID,
			Title:        g.Title,
			Category:     g.Category,
			TargetValue:  g.TargetValue,
			CurrentValue: g.CurrentValue,
			Unit:         g.Unit,
			Priority:     domain.Priority(g.Priority),
			Status:       domain.GoalStatus(g.Status),
			Archived:     g.Archived,
		}
		if g.Deadline != nil {
			goal.Deadline = *g.Deadline
		}
		if g.CreatedAt != nil {
			goal.CreatedAt = *g.CreatedAt
		}
		goals = append(goals, goal)
	}
	if err := h.store.SyncGoals(r.Context(), goals); err != nil && !errors.Is(err, analytics.ErrPersistFailed) {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"recorded": len(goals)})
}

func (h *handler) goalHistory(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalID")
	days, ok := parseDays(w, r, analytics.DefaultHistoryWindowDays)
	if !ok {
		return
	}
	entries := h.store.GoalProgressHistory(goalID, days)
	out := make([]progressResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, progressResponse{
			ID:     entry.ID,
			GoalID: entry.GoalID,
			Date:   entry.Date,
			Value:  entry.Value,
			Notes:  entry.Notes,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) productivityStats(w http.ResponseWriter, r *http.Request) {
	days, ok := parseDays(w, r, analytics.DefaultStatsWindowDays)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.store.ProductivityStats(days))
}

func (h *handler) categoryAnalytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.CategoryAnalytics())
}

func (h *handler) generateReport(w http.ResponseWriter, r *http.Request) {
	start, err := parseDateParam(r.URL.Query().Get("start"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid start date")
		return
	}
	end, err := parseDateParam(r.URL.Query().Get("end"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid end date")
		return
	}
	report, err := h.store.GenerateReport(start, end)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "bad_request", "end date falls before start date")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "report could not be generated")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *handler) exportLog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.ExportLog())
}

// decode reads, decodes, and validates one JSON request body.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	defer func() { _ = body.Close() }()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json payload")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	return true
}

// parseDays reads the optional ?days query parameter.
func parseDays(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("days"))
	if raw == "" {
		return fallback, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "days must be a non-negative integer")
		return 0, false
	}
	return days, true
}

// parseDateParam accepts RFC3339 timestamps or bare day keys. A bare end-day
// expands to the end of that day so the inclusive range covers it fully.
func parseDateParam(raw string, endOfDay bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	day, err := time.ParseInLocation(timeutil.DayFormat, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return day.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	return day, nil
}

// writeJSON encodes one success payload.
func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError encodes one error envelope.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Code: code, Message: message})
}

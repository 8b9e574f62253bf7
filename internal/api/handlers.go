// Package api exposes the tracker page and its JSON endpoints over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/rajvarma2599/fitnessapp/internal/domain"
	"github.com/rajvarma2599/fitnessapp/internal/view"
)

const (
	noticeLogged  = "logged"
	successNotice = "Workout logged successfully!"
	failureNotice = "Workout could not be saved."

	defaultListLimit = domain.HistoryLimit
	maxListLimit     = 100
)

// Handler coordinates HTTP requests with the tracker.
type Handler struct {
	tracker  *domain.Tracker
	renderer *view.Renderer
	logger   log.FieldLogger
}

// NewHandler builds a Handler.
func NewHandler(tracker *domain.Tracker, renderer *view.Renderer, logger log.FieldLogger) *Handler {
	return &Handler{tracker: tracker, renderer: renderer, logger: logger}
}

// RegisterRoutes wires endpoints to the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", h.page)
	mux.HandleFunc("/workouts", h.submitForm)
	mux.HandleFunc("/v1/workouts", h.workouts)
	mux.HandleFunc("/v1/dashboard", h.dashboard)
	mux.HandleFunc("/v1/charts", h.charts)
	mux.HandleFunc("/healthz", healthz)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var notice *view.Notice
	if r.URL.Query().Get("notice") == noticeLogged {
		notice = &view.Notice{Kind: view.NoticeSuccess, Message: successNotice}
	}
	h.renderPage(w, http.StatusOK, notice)
}

// submitForm handles the page's workout form. A successful submission
// redirects back to the page so a reload does not resubmit.
func (h *Handler) submitForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}

	input := domain.WorkoutInput{
		Type:     r.PostForm.Get("workout-type"),
		Duration: r.PostForm.Get("duration"),
		Calories: r.PostForm.Get("calories"),
		Notes:    r.PostForm.Get("notes"),
	}
	if _, err := h.tracker.Log(r.Context(), input); err != nil {
		h.logger.WithError(err).Error("workout form submission failed")
		h.renderPage(w, http.StatusInternalServerError, &view.Notice{Kind: view.NoticeError, Message: failureNotice})
		return
	}

	http.Redirect(w, r, "/?notice="+noticeLogged, http.StatusSeeOther)
}

func (h *Handler) renderPage(w http.ResponseWriter, status int, notice *view.Notice) {
	var buf bytes.Buffer
	page := view.Page{Dashboard: h.tracker.Dashboard(), Location: h.tracker.Location(), Notice: notice}
	if err := h.renderer.Render(&buf, page); err != nil {
		h.logger.WithError(err).Error("page render failed")
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) workouts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createWorkout(w, r)
	case http.MethodGet:
		h.listWorkouts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	}
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	record, err := h.tracker.Log(r.Context(), domain.WorkoutInput{
		Type:     string(req.Type),
		Duration: string(req.Duration),
		Calories: string(req.Calories),
		Notes:    string(req.Notes),
	})
	if err != nil {
		h.logger.WithError(err).Error("workout create failed")
		writeError(w, http.StatusInternalServerError, "server_error", failureNotice)
		return
	}

	writeJSON(w, http.StatusCreated, CreateWorkoutResponse{Workout: record, Message: successNotice})
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			if parsed > maxListLimit {
				parsed = maxListLimit
			}
			limit = parsed
		}
	}

	items := domain.History(h.tracker.Snapshot(), limit)
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: items, Limit: limit})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	d := h.tracker.Dashboard()
	writeJSON(w, http.StatusOK, DashboardResponse{
		TotalWorkouts: d.TotalWorkouts,
		TotalMinutes:  d.TotalMinutes,
		TotalCalories: d.TotalCalories,
		GoalsAchieved: d.GoalsAchieved,
		Recent:        d.Recent,
		History:       d.History,
		Weekly:        d.WeeklyCounts[:],
		MonthlyLabels: d.MonthlyLabels,
		Monthly:       d.MonthlyValues,
	})
}

func (h *Handler) charts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}
	writeJSON(w, http.StatusOK, view.BuildCharts(h.tracker.Dashboard()))
}

// FormValue accepts a JSON string, number, or null and keeps its text, so
// numeric fields go through the same best-effort parsing as the form.
type FormValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *FormValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "null":
		*v = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FormValue(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.New("expected a string or number")
		}
		*v = FormValue(n.String())
	}
	return nil
}

// CreateWorkoutRequest is the payload for POST /v1/workouts.
type CreateWorkoutRequest struct {
	Type     FormValue `json:"type"`
	Duration FormValue `json:"duration"`
	Calories FormValue `json:"calories"`
	Notes    FormValue `json:"notes"`
}

// CreateWorkoutResponse describes the response body for create.
type CreateWorkoutResponse struct {
	Workout domain.WorkoutRecord `json:"workout"`
	Message string               `json:"message"`
}

// ListWorkoutsResponse packages newest-first history.
type ListWorkoutsResponse struct {
	Items []domain.WorkoutRecord `json:"items"`
	Limit int                    `json:"limit"`
}

// DashboardResponse mirrors every derived widget on the page.
type DashboardResponse struct {
	TotalWorkouts int                    `json:"total_workouts"`
	TotalMinutes  int                    `json:"total_minutes"`
	TotalCalories int                    `json:"total_calories"`
	GoalsAchieved int                    `json:"goals_achieved"`
	Recent        []domain.WorkoutRecord `json:"recent"`
	History       []domain.WorkoutRecord `json:"history"`
	Weekly        []int                  `json:"weekly"`
	MonthlyLabels []string               `json:"monthly_labels"`
	Monthly       []int                  `json:"monthly"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

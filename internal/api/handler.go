// Package api provides HTTP handlers for the botforge operator API.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/akiii/botforge/internal/store"
)

// Handler serves the operator endpoints: health and build history.
type Handler struct {
	repo store.Repository
}

// NewHandler creates a new Handler.
func NewHandler(repo store.Repository) *Handler {
	return &Handler{repo: repo}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// RegisterRoutes mounts the API endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/api/health", h.handleHealth)
	r.Get("/api/builds/recent", h.handleRecentBuilds)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.repo.Ping(ctx); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	JSON(w, code, map[string]string{"status": status})
}

type buildResponse struct {
	BuildID      string `json:"build_id"`
	UserID       string `json:"user_id"`
	BotName      string `json:"bot_name"`
	CommandCount int    `json:"command_count"`
	Outcome      string `json:"outcome"`
	Detail       string `json:"detail,omitempty"`
	CreatedAt    string `json:"created_at"`
}

func (h *Handler) handleRecentBuilds(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			Error(w, http.StatusBadRequest, "limit must be an integer between 1 and 100")
			return
		}
		limit = n
	}

	records, err := h.repo.RecentBuilds(r.Context(), limit)
	if err != nil {
		Error(w, http.StatusInternalServerError, "failed to load build history")
		return
	}

	out := make([]buildResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, buildResponse{
			BuildID:      rec.BuildID,
			UserID:       rec.UserID,
			BotName:      rec.BotName,
			CommandCount: rec.CommandCount,
			Outcome:      string(rec.Outcome),
			Detail:       rec.Detail,
			CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	JSON(w, http.StatusOK, map[string]interface{}{"builds": out})
}

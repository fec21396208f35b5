// Package api exposes HTTP handlers for the activity service.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/VK-10/AI-fitness-App/internal/auth"
	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/persistence"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	service         *domain.Service
	recommendations *domain.RecommendationService
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, recommendations *domain.RecommendationService) *Handler {
	return &Handler{service: service, recommendations: recommendations}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/activities", h.createActivity).Methods(http.MethodPost)
	r.HandleFunc("/v1/activities", h.listActivities).Methods(http.MethodGet)
	r.HandleFunc("/v1/activities/{id}", h.getActivity).Methods(http.MethodGet)
	r.HandleFunc("/v1/recommendations/activity/{id}", h.activityRecommendation).Methods(http.MethodGet)
	r.HandleFunc("/v1/recommendations/user/{userID}", h.userRecommendations).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) createActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if !claims.HasScope(auth.ScopeActivitiesWrite) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:write required")
		return
	}

	var req TrackActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}

	activityType, err := domain.ParseActivityType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	aggregate, replay, err := h.service.TrackActivity(r.Context(), domain.TrackActivityInput{
		TenantID:          claims.TenantID,
		UserID:            req.UserID,
		Type:              activityType,
		DurationMin:       req.DurationMin,
		CaloriesBurned:    req.CaloriesBurned,
		StartedAt:         req.StartedAt,
		AdditionalMetrics: req.AdditionalMetrics,
		IdempotencyKey:    strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	case errors.Is(err, domain.ErrInvalidUser):
		writeError(w, http.StatusUnprocessableEntity, "invalid_user", err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	status := http.StatusAccepted
	if replay {
		status = http.StatusOK
	}
	writeJSON(w, status, TrackActivityResponse{
		ActivityID: aggregate.ID,
		Status:     string(aggregate.State),
		Replay:     replay,
	})
}

func (h *Handler) getActivity(w http.ResponseWriter, r *http.Request) {
	claims, ok := readerClaims(w, r)
	if !ok {
		return
	}

	aggregate, err := h.service.GetActivity(r.Context(), claims.TenantID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, domain.ErrActivityNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "activity not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toActivityView(*aggregate))
}

func (h *Handler) listActivities(w http.ResponseWriter, r *http.Request) {
	claims, ok := readerClaims(w, r)
	if !ok {
		return
	}

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "missing user_id parameter")
		return
	}

	cursor, err := persistence.DecodeCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}

	aggregates, next, err := h.service.ListUserActivities(r.Context(), claims.TenantID, userID, cursor, parseLimit(r, defaultListLimit))
	if errors.Is(err, domain.ErrValidation) {
		writeError(w, http.StatusBadRequest, "validation_failed", "invalid cursor")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]ActivityView, 0, len(aggregates))
	for _, agg := range aggregates {
		items = append(items, toActivityView(agg))
	}
	writeJSON(w, http.StatusOK, ListActivitiesResponse{
		Items:      items,
		NextCursor: persistence.EncodeCursor(next),
	})
}

func (h *Handler) activityRecommendation(w http.ResponseWriter, r *http.Request) {
	claims, ok := readerClaims(w, r)
	if !ok {
		return
	}

	rec, err := h.recommendations.ForActivity(r.Context(), claims.TenantID, mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, domain.ErrRecommendationNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "recommendation not available yet")
			return
		}
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, toRecommendationView(*rec))
}

func (h *Handler) userRecommendations(w http.ResponseWriter, r *http.Request) {
	claims, ok := readerClaims(w, r)
	if !ok {
		return
	}

	recs, err := h.recommendations.ForUser(r.Context(), claims.TenantID, mux.Vars(r)["userID"], parseLimit(r, defaultListLimit))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	items := make([]RecommendationView, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toRecommendationView(rec))
	}
	writeJSON(w, http.StatusOK, ListRecommendationsResponse{Items: items})
}

func readerClaims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return nil, false
	}
	if !auth.CanRead(claims) {
		writeError(w, http.StatusForbidden, "forbidden", "scope activities:read required")
		return nil, false
	}
	return claims, true
}

func parseLimit(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	if parsed > maxListLimit {
		return maxListLimit
	}
	return parsed
}

// TrackActivityRequest is the payload for POST /v1/activities.
type TrackActivityRequest struct {
	UserID            string             `json:"user_id"`
	Type              string             `json:"type"`
	DurationMin       int                `json:"duration_min"`
	CaloriesBurned    int                `json:"calories_burned"`
	StartedAt         time.Time          `json:"started_at"`
	AdditionalMetrics map[string]float64 `json:"additional_metrics,omitempty"`
}

// TrackActivityResponse describes the response body for create.
type TrackActivityResponse struct {
	ActivityID string `json:"activity_id"`
	Status     string `json:"status"`
	Replay     bool   `json:"idempotent_replay"`
}

// ActivityView is the wire form of an activity.
type ActivityView struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Type              string             `json:"type"`
	DurationMin       int                `json:"duration_min"`
	CaloriesBurned    int                `json:"calories_burned"`
	StartedAt         time.Time          `json:"started_at"`
	AdditionalMetrics map[string]float64 `json:"additional_metrics,omitempty"`
	Version           string             `json:"version"`
	Status            string             `json:"status"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ListActivitiesResponse packages list results.
type ListActivitiesResponse struct {
	Items      []ActivityView `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// RecommendationView is the wire form of a recommendation.
type RecommendationView struct {
	ID           string    `json:"id"`
	ActivityID   string    `json:"activity_id"`
	UserID       string    `json:"user_id"`
	ActivityType string    `json:"activity_type"`
	Analysis     string    `json:"analysis"`
	Improvements []string  `json:"improvements"`
	Suggestions  []string  `json:"suggestions"`
	Safety       []string  `json:"safety"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListRecommendationsResponse packages a user's recommendations.
type ListRecommendationsResponse struct {
	Items []RecommendationView `json:"items"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, map[string]string{
		"type":   code,
		"detail": detail,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func toActivityView(agg domain.ActivityAggregate) ActivityView {
	return ActivityView{
		ID:                agg.ID,
		UserID:            agg.UserID,
		Type:              string(agg.Type),
		DurationMin:       agg.DurationMin,
		CaloriesBurned:    agg.CaloriesBurned,
		StartedAt:         agg.StartedAt,
		AdditionalMetrics: agg.AdditionalMetrics,
		Version:           agg.Version,
		Status:            string(agg.State),
		CreatedAt:         agg.CreatedAt,
		UpdatedAt:         agg.UpdatedAt,
	}
}

func toRecommendationView(rec domain.Recommendation) RecommendationView {
	return RecommendationView{
		ID:           rec.ID,
		ActivityID:   rec.ActivityID,
		UserID:       rec.UserID,
		ActivityType: string(rec.ActivityType),
		Analysis:     rec.Analysis,
		Improvements: nonNil(rec.Improvements),
		Suggestions:  nonNil(rec.Suggestions),
		Safety:       nonNil(rec.Safety),
		CreatedAt:    rec.CreatedAt,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

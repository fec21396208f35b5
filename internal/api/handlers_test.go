package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/VK-10/AI-fitness-App/internal/auth"
	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/persistence/memory"
)

func newTestRouter(t *testing.T) (*mux.Router, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.RegisterUser("tenant-1", "user-1")

	handler := NewHandler(domain.NewService(store, store), domain.NewRecommendationService(store))
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return router, store
}

func withScopes(req *http.Request, scopes ...string) *http.Request {
	set := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		set[s] = struct{}{}
	}
	return req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{
		Subject:   "user-1",
		TenantID:  "tenant-1",
		Scopes:    set,
		ExpiresAt: time.Now().Add(time.Hour),
	}))
}

func track(t *testing.T, router http.Handler, body, idempotencyKey string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(body))
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(req, auth.ScopeActivitiesWrite))
	return rr
}

const runBody = `{"user_id":"user-1","type":"run","duration_min":30,"calories_burned":300,"started_at":"2024-05-01T07:00:00Z"}`

func TestTrackActivityAcceptsAndReplays(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := track(t, router, runBody, "key-1")
	if rr.Code != http.StatusAccepted {
		t.Fatalf("expected 202 got %d: %s", rr.Code, rr.Body.String())
	}
	var first TrackActivityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first.Status != "pending" || first.Replay {
		t.Fatalf("unexpected response %+v", first)
	}

	rr = track(t, router, runBody, "key-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on replay got %d", rr.Code)
	}
	var replay TrackActivityResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &replay); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if replay.ActivityID != first.ActivityID || !replay.Replay {
		t.Fatalf("expected replay of %s got %+v", first.ActivityID, replay)
	}
}

func TestTrackActivityValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	cases := map[string]string{
		"unknown type":  `{"user_id":"user-1","type":"jousting","duration_min":30,"started_at":"2024-05-01T07:00:00Z"}`,
		"zero duration": `{"user_id":"user-1","type":"RUNNING","duration_min":0,"started_at":"2024-05-01T07:00:00Z"}`,
		"missing start": `{"user_id":"user-1","type":"RUNNING","duration_min":10}`,
		"bad json":      `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := track(t, router, body, "")
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestTrackActivityRejectsUnknownUser(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := track(t, router, strings.Replace(runBody, "user-1", "ghost", 1), "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["type"] != "invalid_user" {
		t.Fatalf("unexpected error type %q", body["type"])
	}
}

func TestTrackActivityRequiresWriteScope(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(runBody))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(req, auth.ScopeActivitiesRead))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/activities", strings.NewReader(runBody)))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rr.Code)
	}
}

func TestListAndGetActivities(t *testing.T) {
	router, _ := newTestRouter(t)
	for _, start := range []string{"2024-05-01T07:00:00Z", "2024-05-02T07:00:00Z", "2024-05-03T07:00:00Z"} {
		if rr := track(t, router, strings.Replace(runBody, "2024-05-01T07:00:00Z", start, 1), ""); rr.Code != http.StatusAccepted {
			t.Fatalf("seed failed: %d", rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/activities?user_id=user-1&limit=2", nil), auth.ScopeActivitiesRead))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var page ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("expected 2 items and a cursor, got %d items cursor=%q", len(page.Items), page.NextCursor)
	}
	if !page.Items[0].StartedAt.After(page.Items[1].StartedAt) {
		t.Fatalf("expected newest first")
	}
	if page.Items[0].Type != "RUNNING" || page.Items[0].DurationMin != 30 || page.Items[0].CaloriesBurned != 300 {
		t.Fatalf("unexpected item %+v", page.Items[0])
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/activities?user_id=user-1&cursor="+page.NextCursor, nil), auth.ScopeActivitiesRead))
	var rest ListActivitiesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rest.Items) != 1 {
		t.Fatalf("expected 1 remaining item got %d", len(rest.Items))
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/activities/"+rest.Items[0].ID, nil), auth.ScopeActivitiesRead))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/activities/missing", nil), auth.ScopeActivitiesRead))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rr.Code)
	}
}

func TestListActivitiesRejectsBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{"/v1/activities", "/v1/activities?user_id=user-1&cursor=%21%21"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, target, nil), auth.ScopeActivitiesRead))
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", target, rr.Code)
		}
	}
}

func TestRecommendationEndpoints(t *testing.T) {
	router, store := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/recommendations/activity/act-1", nil), auth.ScopeActivitiesRead))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generation got %d", rr.Code)
	}

	err := store.Save(context.Background(), domain.Recommendation{
		ActivityID:   "act-1",
		TenantID:     "tenant-1",
		UserID:       "user-1",
		ActivityType: domain.ActivityRunning,
		Analysis:     "Solid run.",
		Safety:       []string{"Hydrate."},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/recommendations/activity/act-1", nil), auth.ScopeActivitiesRead))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var rec RecommendationView
	if err := json.Unmarshal(rr.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Analysis != "Solid run." || rec.Improvements == nil {
		t.Fatalf("unexpected recommendation %+v", rec)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, withScopes(httptest.NewRequest(http.MethodGet, "/v1/recommendations/user/user-1", nil), auth.ScopeActivitiesWrite))
	var list ListRecommendationsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 recommendation got %d", len(list.Items))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/v1/activities", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", rr.Code)
	}
}

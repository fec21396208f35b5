// Package activityclient calls the activity API on behalf of a signed-in user.
package activityclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound matches API responses with status 404.
	ErrNotFound = errors.New("not found")
	// ErrNoSession is returned when a request is attempted without WithSession.
	ErrNoSession = errors.New("no session")
)

// APIError is a non-2xx answer from the activity API.
type APIError struct {
	Status int
	Type   string
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("activity api: status %d", e.Status)
	}
	return fmt.Sprintf("activity api: status %d: %s: %s", e.Status, e.Type, e.Detail)
}

// Is makes errors.Is(err, ErrNotFound) true for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Activity is an activity as returned by the API.
type Activity struct {
	ID                string             `json:"id"`
	UserID            string             `json:"user_id"`
	Type              string             `json:"type"`
	DurationMin       int                `json:"duration_min"`
	CaloriesBurned    int                `json:"calories_burned"`
	StartedAt         time.Time          `json:"started_at"`
	AdditionalMetrics map[string]float64 `json:"additional_metrics,omitempty"`
	Status            string             `json:"status"`
}

// Recommendation is the generated guidance for one activity.
type Recommendation struct {
	ID           string    `json:"id"`
	ActivityID   string    `json:"activity_id"`
	Analysis     string    `json:"analysis"`
	Improvements []string  `json:"improvements"`
	Suggestions  []string  `json:"suggestions"`
	Safety       []string  `json:"safety"`
	CreatedAt    time.Time `json:"created_at"`
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithListLimit sets the page size requested by GetActivities.
func WithListLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.listLimit = limit
		}
	}
}

// Client is an activity API client. The zero session is unusable; derive a
// per-user client with WithSession.
type Client struct {
	baseURL    string
	httpClient *http.Client
	listLimit  int
	token      string
	userID     string
}

// New constructs a Client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 5 * time.Second},
		listLimit:  50,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of c that authenticates as userID with token.
func (c *Client) WithSession(token, userID string) *Client {
	cp := *c
	cp.token = strings.TrimSpace(token)
	cp.userID = strings.TrimSpace(userID)
	return &cp
}

// GetActivities returns the session user's activities, newest first.
func (c *Client) GetActivities(ctx context.Context) ([]Activity, error) {
	if c.userID == "" {
		return nil, ErrNoSession
	}
	q := url.Values{}
	q.Set("user_id", c.userID)
	q.Set("limit", strconv.Itoa(c.listLimit))

	var page struct {
		Items []Activity `json:"items"`
	}
	if err := c.get(ctx, "/v1/activities?"+q.Encode(), &page); err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	if page.Items == nil {
		page.Items = []Activity{}
	}
	return page.Items, nil
}

// GetActivity returns one activity.
func (c *Client) GetActivity(ctx context.Context, activityID string) (*Activity, error) {
	var a Activity
	if err := c.get(ctx, "/v1/activities/"+url.PathEscape(activityID), &a); err != nil {
		return nil, fmt.Errorf("get activity %s: %w", activityID, err)
	}
	return &a, nil
}

// GetRecommendation returns the recommendation for an activity, or an error
// matching ErrNotFound while it is still being generated.
func (c *Client) GetRecommendation(ctx context.Context, activityID string) (*Recommendation, error) {
	var rec Recommendation
	if err := c.get(ctx, "/v1/recommendations/activity/"+url.PathEscape(activityID), &rec); err != nil {
		return nil, fmt.Errorf("get recommendation %s: %w", activityID, err)
	}
	return &rec, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if c.token == "" {
		return ErrNoSession
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload struct {
		Type   string `json:"type"`
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Type = payload.Type
		apiErr.Detail = payload.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(body))
	}
	return apiErr
}

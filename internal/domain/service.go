// Package domain defines the business logic for tracking activities and
// reading the recommendations generated for them.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrActivityNotFound is returned when an activity cannot be located.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrInvalidUser is returned when the user directory does not know the user.
	ErrInvalidUser = errors.New("invalid user")
	// ErrValidation wraps input validation failures.
	ErrValidation = errors.New("validation failed")
)

// ActivityState represents the processing status of an activity.
type ActivityState string

const (
	ActivityStatePending ActivityState = "pending"
	ActivityStateSynced  ActivityState = "synced"
	ActivityStateFailed  ActivityState = "failed"
)

// ActivityAggregate is the domain object stored in Postgres and published to
// the recommendation pipeline.
type ActivityAggregate struct {
	ID                string
	TenantID          string
	UserID            string
	Type              ActivityType
	DurationMin       int
	CaloriesBurned    int
	StartedAt         time.Time
	AdditionalMetrics map[string]float64
	Version           string
	State             ActivityState
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ActivityRepository captures persistence operations.
type ActivityRepository interface {
	FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*ActivityAggregate, error)
	Create(ctx context.Context, aggregate ActivityAggregate, idempotencyKey string) error
	Get(ctx context.Context, tenantID, activityID string) (*ActivityAggregate, error)
	ListByUser(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]ActivityAggregate, *Cursor, error)
}

// UserValidator confirms a user exists before activities are recorded for them.
type UserValidator interface {
	ValidateUser(ctx context.Context, tenantID, userID string) (bool, error)
}

// Service orchestrates activity workflows.
type Service struct {
	repo  ActivityRepository
	users UserValidator
	now   func() time.Time
}

// NewService constructs a Service.
func NewService(repo ActivityRepository, users UserValidator) *Service {
	return &Service{repo: repo, users: users, now: time.Now}
}

// TrackActivityInput captures the payload from the API layer.
type TrackActivityInput struct {
	TenantID          string
	UserID            string
	Type              ActivityType
	DurationMin       int
	CaloriesBurned    int
	StartedAt         time.Time
	AdditionalMetrics map[string]float64
	IdempotencyKey    string
}

// Validate ensures the input is complete.
func (in TrackActivityInput) Validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	case in.Type == "":
		return fmt.Errorf("%w: type is required", ErrValidation)
	case in.DurationMin <= 0:
		return fmt.Errorf("%w: duration_min must be > 0", ErrValidation)
	case in.CaloriesBurned < 0:
		return fmt.Errorf("%w: calories_burned must be >= 0", ErrValidation)
	case in.StartedAt.IsZero():
		return fmt.Errorf("%w: started_at is required", ErrValidation)
	}
	if _, ok := knownActivityTypes[in.Type]; !ok {
		return fmt.Errorf("%w: unknown type %q", ErrValidation, in.Type)
	}
	return nil
}

// Cursor models the pagination token.
type Cursor struct {
	StartedAt time.Time
	ID        string
}

// TrackActivity validates the user, then records the activity with idempotent
// replay semantics. The boolean reports a replay.
func (s *Service) TrackActivity(ctx context.Context, input TrackActivityInput) (*ActivityAggregate, bool, error) {
	if err := input.Validate(); err != nil {
		return nil, false, err
	}

	if existing, err := s.repo.FindByIdempotency(ctx, input.TenantID, input.UserID, input.IdempotencyKey); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, true, nil
	}

	valid, err := s.users.ValidateUser(ctx, input.TenantID, input.UserID)
	if err != nil {
		return nil, false, fmt.Errorf("validate user: %w", err)
	}
	if !valid {
		return nil, false, fmt.Errorf("%w: %s", ErrInvalidUser, input.UserID)
	}

	now := s.now().UTC()
	aggregate := ActivityAggregate{
		ID:                uuid.NewString(),
		TenantID:          input.TenantID,
		UserID:            input.UserID,
		Type:              input.Type,
		DurationMin:       input.DurationMin,
		CaloriesBurned:    input.CaloriesBurned,
		StartedAt:         input.StartedAt.UTC(),
		AdditionalMetrics: input.AdditionalMetrics,
		Version:           "v1",
		State:             ActivityStatePending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, aggregate, input.IdempotencyKey); err != nil {
		return nil, false, err
	}

	return &aggregate, false, nil
}

// GetActivity fetches by ID.
func (s *Service) GetActivity(ctx context.Context, tenantID, activityID string) (*ActivityAggregate, error) {
	agg, err := s.repo.Get(ctx, tenantID, activityID)
	if err != nil {
		return nil, err
	}
	if agg == nil {
		return nil, ErrActivityNotFound
	}
	return agg, nil
}

// ListUserActivities fetches a user's activities, newest first, with cursor pagination.
func (s *Service) ListUserActivities(ctx context.Context, tenantID, userID string, cursor *Cursor, limit int) ([]ActivityAggregate, *Cursor, error) {
	return s.repo.ListByUser(ctx, tenantID, userID, cursor, limit)
}

package domain

import (
	"context"
	"errors"
	"time"
)

// ErrRecommendationNotFound is returned when no recommendation exists yet.
var ErrRecommendationNotFound = errors.New("recommendation not found")

// Recommendation is the analysis generated for one tracked activity.
type Recommendation struct {
	ID           string
	ActivityID   string
	TenantID     string
	UserID       string
	ActivityType ActivityType
	Analysis     string
	Improvements []string
	Suggestions  []string
	Safety       []string
	CreatedAt    time.Time
}

// RecommendationRepository stores recommendations, one per activity.
type RecommendationRepository interface {
	Save(ctx context.Context, rec Recommendation) error
	GetByActivity(ctx context.Context, tenantID, activityID string) (*Recommendation, error)
	ListForUser(ctx context.Context, tenantID, userID string, limit int) ([]Recommendation, error)
}

// RecommendationService exposes recommendation reads to the API.
type RecommendationService struct {
	repo RecommendationRepository
}

// NewRecommendationService constructs a RecommendationService.
func NewRecommendationService(repo RecommendationRepository) *RecommendationService {
	return &RecommendationService{repo: repo}
}

// ForActivity returns the recommendation for an activity.
func (s *RecommendationService) ForActivity(ctx context.Context, tenantID, activityID string) (*Recommendation, error) {
	rec, err := s.repo.GetByActivity(ctx, tenantID, activityID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrRecommendationNotFound
	}
	return rec, nil
}

// ForUser lists a user's recommendations, newest first.
func (s *RecommendationService) ForUser(ctx context.Context, tenantID, userID string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListForUser(ctx, tenantID, userID, limit)
}

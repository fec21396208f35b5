// Package memory provides in-process repositories for local development and tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VK-10/AI-fitness-App/internal/domain"
)

// Store keeps activities and recommendations in memory. It implements
// domain.ActivityRepository, domain.RecommendationRepository and
// domain.UserValidator.
type Store struct {
	mu              sync.RWMutex
	activities      map[string]domain.ActivityAggregate
	idempotency     map[string]string
	recommendations map[string]domain.Recommendation
	users           map[string]struct{}
	allowAllUsers   bool
}

// NewStore constructs an empty store. With no registered users every user id
// validates; RegisterUser switches the store to an explicit directory.
func NewStore() *Store {
	return &Store{
		activities:      make(map[string]domain.ActivityAggregate),
		idempotency:     make(map[string]string),
		recommendations: make(map[string]domain.Recommendation),
		users:           make(map[string]struct{}),
		allowAllUsers:   true,
	}
}

// RegisterUser adds a user to the directory used by ValidateUser.
func (s *Store) RegisterUser(tenantID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.allowAllUsers = false
	s.users[tenantID+"/"+userID] = struct{}{}
}

// ValidateUser implements domain.UserValidator.
func (s *Store) ValidateUser(ctx context.Context, tenantID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.allowAllUsers {
		return strings.TrimSpace(userID) != "", nil
	}
	_, ok := s.users[tenantID+"/"+userID]
	return ok, nil
}

// FindByIdempotency implements domain.ActivityRepository.
func (s *Store) FindByIdempotency(ctx context.Context, tenantID, userID, idempotencyKey string) (*domain.ActivityAggregate, error) {
	if idempotencyKey == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.idempotency[idempotencyIndex(tenantID, userID, idempotencyKey)]
	if !ok {
		return nil, nil
	}
	agg := s.activities[id]
	return &agg, nil
}

// Create implements domain.ActivityRepository.
func (s *Store) Create(ctx context.Context, aggregate domain.ActivityAggregate, idempotencyKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(aggregate.ID) == "" {
		aggregate.ID = uuid.NewString()
	}
	s.activities[aggregate.ID] = aggregate
	if idempotencyKey != "" {
		s.idempotency[idempotencyIndex(aggregate.TenantID, aggregate.UserID, idempotencyKey)] = aggregate.ID
	}
	return nil
}

// Get implements domain.ActivityRepository. Activities of other tenants are invisible.
func (s *Store) Get(ctx context.Context, tenantID, activityID string) (*domain.ActivityAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	agg, ok := s.activities[activityID]
	if !ok || agg.TenantID != tenantID {
		return nil, nil
	}
	return &agg, nil
}

// ListByUser implements domain.ActivityRepository with the same keyset
// ordering as the Postgres repository (started_at DESC, id DESC).
func (s *Store) ListByUser(ctx context.Context, tenantID, userID string, cursor *domain.Cursor, limit int) ([]domain.ActivityAggregate, *domain.Cursor, error) {
	s.mu.RLock()
	matches := make([]domain.ActivityAggregate, 0)
	for _, agg := range s.activities {
		if agg.TenantID == tenantID && agg.UserID == userID {
			matches = append(matches, agg)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		return after(matches[i].StartedAt, matches[i].ID, matches[j].StartedAt, matches[j].ID)
	})

	results := make([]domain.ActivityAggregate, 0, limit)
	for _, agg := range matches {
		if cursor != nil && !after(cursor.StartedAt, cursor.ID, agg.StartedAt, agg.ID) {
			continue
		}
		results = append(results, agg)
		if len(results) == limit {
			break
		}
	}

	var next *domain.Cursor
	if limit > 0 && len(results) == limit {
		last := results[len(results)-1]
		next = &domain.Cursor{StartedAt: last.StartedAt, ID: last.ID}
	}
	return results, next, nil
}

// Save implements domain.RecommendationRepository; one recommendation per activity.
func (s *Store) Save(ctx context.Context, rec domain.Recommendation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.recommendations[rec.TenantID+"/"+rec.ActivityID] = rec
	return nil
}

// GetByActivity implements domain.RecommendationRepository.
func (s *Store) GetByActivity(ctx context.Context, tenantID, activityID string) (*domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.recommendations[tenantID+"/"+activityID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// ListForUser implements domain.RecommendationRepository.
func (s *Store) ListForUser(ctx context.Context, tenantID, userID string, limit int) ([]domain.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recommendation, 0)
	for _, rec := range s.recommendations {
		if rec.TenantID == tenantID && rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func idempotencyIndex(tenantID, userID, key string) string {
	return tenantID + "/" + userID + "/" + key
}

// after reports whether (ta, ida) sorts before (tb, idb) in descending order.
func after(ta time.Time, ida string, tb time.Time, idb string) bool {
	if !ta.Equal(tb) {
		return ta.After(tb)
	}
	return ida > idb
}

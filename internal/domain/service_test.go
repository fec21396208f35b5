package domain_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/persistence/memory"
)

func validInput() domain.TrackActivityInput {
	return domain.TrackActivityInput{
		TenantID:       "tenant-1",
		UserID:         "user-1",
		Type:           domain.ActivityRunning,
		DurationMin:    30,
		CaloriesBurned: 300,
		StartedAt:      time.Date(2025, time.October, 27, 7, 0, 0, 0, time.UTC),
	}
}

func TestTrackActivityPersistsPendingAggregate(t *testing.T) {
	store := memory.NewStore()
	service := domain.NewService(store, store)

	agg, replay, err := service.TrackActivity(context.Background(), validInput())
	require.NoError(t, err)
	require.False(t, replay)
	require.NotEmpty(t, agg.ID)
	require.Equal(t, domain.ActivityStatePending, agg.State)
	require.Equal(t, 300, agg.CaloriesBurned)

	stored, err := service.GetActivity(context.Background(), "tenant-1", agg.ID)
	require.NoError(t, err)
	require.Equal(t, agg.ID, stored.ID)
}

func TestTrackActivityReplaysIdempotencyKey(t *testing.T) {
	store := memory.NewStore()
	service := domain.NewService(store, store)

	input := validInput()
	input.IdempotencyKey = "key-1"
	first, _, err := service.TrackActivity(context.Background(), input)
	require.NoError(t, err)

	second, replay, err := service.TrackActivity(context.Background(), input)
	require.NoError(t, err)
	require.True(t, replay)
	require.Equal(t, first.ID, second.ID)
}

func TestTrackActivityRejectsUnknownUser(t *testing.T) {
	store := memory.NewStore()
	store.RegisterUser("tenant-1", "someone-else")
	service := domain.NewService(store, store)

	_, _, err := service.TrackActivity(context.Background(), validInput())
	require.True(t, errors.Is(err, domain.ErrInvalidUser))
}

func TestTrackActivityValidation(t *testing.T) {
	service := domain.NewService(memory.NewStore(), memory.NewStore())

	cases := map[string]func(*domain.TrackActivityInput){
		"missing user":      func(in *domain.TrackActivityInput) { in.UserID = " " },
		"zero duration":     func(in *domain.TrackActivityInput) { in.DurationMin = 0 },
		"negative calories": func(in *domain.TrackActivityInput) { in.CaloriesBurned = -1 },
		"missing start":     func(in *domain.TrackActivityInput) { in.StartedAt = time.Time{} },
		"unknown type":      func(in *domain.TrackActivityInput) { in.Type = "SKYDIVING" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := validInput()
			mutate(&input)
			_, _, err := service.TrackActivity(context.Background(), input)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestGetActivityNotFound(t *testing.T) {
	service := domain.NewService(memory.NewStore(), memory.NewStore())
	_, err := service.GetActivity(context.Background(), "tenant-1", "missing")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestRecommendationServiceNotFound(t *testing.T) {
	service := domain.NewRecommendationService(memory.NewStore())
	_, err := service.ForActivity(context.Background(), "tenant-1", "act-1")
	require.ErrorIs(t, err, domain.ErrRecommendationNotFound)
}

func TestParseActivityType(t *testing.T) {
	cases := map[string]domain.ActivityType{
		"run":             domain.ActivityRunning,
		"Weight Training": domain.ActivityWeightTraining,
		"hiit":            domain.ActivityHIIT,
		" CYCLING ":       domain.ActivityCycling,
	}
	for raw, want := range cases {
		got, err := domain.ParseActivityType(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got)
	}

	_, err := domain.ParseActivityType("juggling")
	require.Error(t, err)
}

func TestActivityTypeLabel(t *testing.T) {
	require.Equal(t, "Weight Training", domain.ActivityWeightTraining.Label())
	require.Equal(t, "HIIT", domain.ActivityHIIT.Label())
	require.Equal(t, "Running", domain.ActivityRunning.Label())
}

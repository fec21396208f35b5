package recommend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/platform/events"
)

func trackedRun() events.ActivityTracked {
	return events.ActivityTracked{
		ActivityID:     "act-1",
		TenantID:       "tenant-1",
		UserID:         "user-1",
		ActivityType:   "RUNNING",
		DurationMin:    30,
		CaloriesBurned: 300,
		StartedAt:      time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC),
		Version:        "v1",
	}
}

func TestGenerateRunningRecommendation(t *testing.T) {
	g := NewGenerator()
	g.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	rec, err := g.Generate(trackedRun())
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "act-1", rec.ActivityID)
	require.Equal(t, domain.ActivityRunning, rec.ActivityType)
	require.Contains(t, rec.Analysis, "Running session of 30 minutes burning 300 kcal")
	require.Contains(t, rec.Analysis, "aerobic endurance")
	require.Equal(t, catalog[domain.ActivityRunning].Suggestions, rec.Suggestions)
	require.Equal(t, []string{"Warm up before and cool down after each session."}, rec.Safety)
	require.Equal(t, g.now(), rec.CreatedAt)
}

func TestGenerateAddsSafetyNotesForLongHighCalorieSessions(t *testing.T) {
	ev := trackedRun()
	ev.DurationMin = 150
	ev.CaloriesBurned = 1800
	ev.AdditionalMetrics = map[string]float64{"max_heart_rate": 195, "avg_heart_rate": 162}

	rec, err := NewGenerator().Generate(ev)
	require.NoError(t, err)
	require.Len(t, rec.Safety, 3)
	require.Contains(t, rec.Safety[0], "over 75 minutes")
	require.Contains(t, rec.Safety[1], "rehydrate")
	require.Contains(t, rec.Analysis, "Average heart rate 162 bpm")
	require.Contains(t, rec.Analysis, "1,800 kcal")
}

func TestGenerateFallsBackForUnknownType(t *testing.T) {
	ev := trackedRun()
	ev.ActivityType = "Underwater Basket Weaving"

	rec, err := NewGenerator().Generate(ev)
	require.NoError(t, err)
	require.Equal(t, domain.ActivityOther, rec.ActivityType)
	require.Equal(t, defaultProfile.Suggestions, rec.Suggestions)
}

func TestGenerateFlagsLightEffort(t *testing.T) {
	ev := trackedRun()
	ev.CaloriesBurned = 60

	rec, err := NewGenerator().Generate(ev)
	require.NoError(t, err)
	require.Contains(t, rec.Improvements[len(rec.Improvements)-1], "Effort was light")
}

func TestGenerateRejectsIncompleteEvents(t *testing.T) {
	cases := map[string]func(*events.ActivityTracked){
		"missing id":    func(e *events.ActivityTracked) { e.ActivityID = "" },
		"missing user":  func(e *events.ActivityTracked) { e.UserID = "" },
		"zero duration": func(e *events.ActivityTracked) { e.DurationMin = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			ev := trackedRun()
			mutate(&ev)
			_, err := NewGenerator().Generate(ev)
			require.ErrorIs(t, err, ErrIncompleteActivity)
		})
	}
}

func TestGenerateDoesNotShareCatalogSlices(t *testing.T) {
	rec, err := NewGenerator().Generate(trackedRun())
	require.NoError(t, err)
	rec.Suggestions[0] = "mutated"
	require.NotEqual(t, "mutated", catalog[domain.ActivityRunning].Suggestions[0])
}

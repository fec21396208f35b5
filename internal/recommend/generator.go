// Package recommend turns tracked activities into training recommendations.
package recommend

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/VK-10/AI-fitness-App/internal/domain"
	"github.com/VK-10/AI-fitness-App/internal/platform/events"
)

// ErrIncompleteActivity is returned when an event lacks the fields needed to
// produce guidance.
var ErrIncompleteActivity = errors.New("incomplete activity")

// Generator builds rule-based recommendations from activity events.
type Generator struct {
	now     func() time.Time
	printer *message.Printer
}

// NewGenerator constructs a Generator.
func NewGenerator() *Generator {
	return &Generator{
		now:     time.Now,
		printer: message.NewPrinter(language.English),
	}
}

// Generate produces the recommendation for one tracked activity. Unknown
// activity types fall back to general guidance.
func (g *Generator) Generate(ev events.ActivityTracked) (domain.Recommendation, error) {
	switch {
	case ev.ActivityID == "":
		return domain.Recommendation{}, fmt.Errorf("%w: missing activity_id", ErrIncompleteActivity)
	case ev.TenantID == "" || ev.UserID == "":
		return domain.Recommendation{}, fmt.Errorf("%w: missing owner for activity %s", ErrIncompleteActivity, ev.ActivityID)
	case ev.DurationMin <= 0:
		return domain.Recommendation{}, fmt.Errorf("%w: non-positive duration for activity %s", ErrIncompleteActivity, ev.ActivityID)
	}

	activityType, err := domain.ParseActivityType(ev.ActivityType)
	if err != nil {
		activityType = domain.ActivityOther
	}
	p := lookupProfile(activityType)

	rate := float64(ev.CaloriesBurned) / float64(ev.DurationMin)
	analysis := g.printer.Sprintf(
		"%s session of %d minutes burning %d kcal (%.1f kcal/min). Focus: %s at %s intensity.",
		activityType.Label(), ev.DurationMin, ev.CaloriesBurned, rate, p.Focus, p.Intensity,
	)
	if hr, ok := ev.AdditionalMetrics["avg_heart_rate"]; ok && hr > 0 {
		analysis += g.printer.Sprintf(" Average heart rate %.0f bpm.", hr)
	}

	improvements := append([]string(nil), p.Improvements...)
	if ev.CaloriesBurned > 0 && rate < p.KcalPerMin/2 {
		improvements = append(improvements, "Effort was light for this activity; try a slightly faster pace next time.")
	}

	return domain.Recommendation{
		ID:           uuid.NewString(),
		ActivityID:   ev.ActivityID,
		TenantID:     ev.TenantID,
		UserID:       ev.UserID,
		ActivityType: activityType,
		Analysis:     analysis,
		Improvements: improvements,
		Suggestions:  append([]string(nil), p.Suggestions...),
		Safety:       g.safetyNotes(ev, p, rate),
		CreatedAt:    g.now().UTC(),
	}, nil
}

func (g *Generator) safetyNotes(ev events.ActivityTracked, p profile, rate float64) []string {
	notes := make([]string, 0, 3)
	if ev.DurationMin > p.LongAfter {
		notes = append(notes, g.printer.Sprintf("Sessions over %d minutes need fuel and a longer recovery window.", p.LongAfter))
	}
	if rate > p.KcalPerMin*1.5 || ev.CaloriesBurned >= 1000 {
		notes = append(notes, "High energy expenditure: rehydrate and replace electrolytes.")
	}
	if hr, ok := ev.AdditionalMetrics["max_heart_rate"]; ok && hr >= 190 {
		notes = append(notes, "Peak heart rate was very high; stop if you feel dizzy or short of breath.")
	}
	if len(notes) == 0 {
		notes = append(notes, "Warm up before and cool down after each session.")
	}
	return notes
}

package domain

import (
	"fmt"
	"strings"
)

// ActivityType enumerates the exercise kinds users can track.
type ActivityType string

const (
	ActivityRunning        ActivityType = "RUNNING"
	ActivityWalking        ActivityType = "WALKING"
	ActivityCycling        ActivityType = "CYCLING"
	ActivitySwimming       ActivityType = "SWIMMING"
	ActivityWeightTraining ActivityType = "WEIGHT_TRAINING"
	ActivityYoga           ActivityType = "YOGA"
	ActivityHIIT           ActivityType = "HIIT"
	ActivityCardio         ActivityType = "CARDIO"
	ActivityStretching     ActivityType = "STRETCHING"
	ActivityOther          ActivityType = "OTHER"
)

var knownActivityTypes = map[ActivityType]struct{}{
	ActivityRunning:        {},
	ActivityWalking:        {},
	ActivityCycling:        {},
	ActivitySwimming:       {},
	ActivityWeightTraining: {},
	ActivityYoga:           {},
	ActivityHIIT:           {},
	ActivityCardio:         {},
	ActivityStretching:     {},
	ActivityOther:          {},
}

// ParseActivityType normalises user input ("weight training", "Run") into a
// known ActivityType.
func ParseActivityType(raw string) (ActivityType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	switch normalized {
	case "RUN":
		normalized = string(ActivityRunning)
	case "WALK":
		normalized = string(ActivityWalking)
	case "RIDE", "BIKE":
		normalized = string(ActivityCycling)
	case "SWIM":
		normalized = string(ActivitySwimming)
	}
	t := ActivityType(normalized)
	if _, ok := knownActivityTypes[t]; !ok {
		return "", fmt.Errorf("unknown activity type %q", raw)
	}
	return t, nil
}

// Label returns a display form such as "Weight Training".
func (t ActivityType) Label() string {
	words := strings.Split(strings.ToLower(string(t)), "_")
	for i, w := range words {
		if w == "hiit" {
			words[i] = "HIIT"
			continue
		}
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

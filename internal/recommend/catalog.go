package recommend

import "github.com/VK-10/AI-fitness-App/internal/domain"

// profile holds per-type guidance used to build a recommendation.
type profile struct {
	Focus        string
	Intensity    string
	Improvements []string
	Suggestions  []string
	// LongAfter is the duration in minutes past which a session counts as long.
	LongAfter int
	// KcalPerMin is a typical burn rate; sessions well above it get a hydration note.
	KcalPerMin float64
}

var defaultProfile = profile{
	Focus:        "general fitness",
	Intensity:    "moderate",
	Improvements: []string{"Log heart rate or perceived effort so sessions can be compared."},
	Suggestions:  []string{"Mix in one strength and one mobility session each week."},
	LongAfter:    90,
	KcalPerMin:   7,
}

var catalog = map[domain.ActivityType]profile{
	domain.ActivityRunning: {
		Focus:        "aerobic endurance",
		Intensity:    "moderate to high",
		Improvements: []string{"Keep most weekly mileage at an easy conversational pace.", "Add strides after one easy run a week to work on cadence."},
		Suggestions:  []string{"Follow long runs with a recovery ride or yoga session.", "Increase weekly distance by no more than ten percent."},
		LongAfter:    75,
		KcalPerMin:   11,
	},
	domain.ActivityWalking: {
		Focus:        "low-impact conditioning",
		Intensity:    "low",
		Improvements: []string{"Add short brisk intervals to raise your heart rate."},
		Suggestions:  []string{"Try hilly routes to build leg strength."},
		LongAfter:    120,
		KcalPerMin:   5,
	},
	domain.ActivityCycling: {
		Focus:        "aerobic endurance",
		Intensity:    "moderate",
		Improvements: []string{"Check saddle height and cadence; aim for 80 to 95 rpm on flats."},
		Suggestions:  []string{"Pair tempo rides with an easy recovery ride the next day."},
		LongAfter:    120,
		KcalPerMin:   9,
	},
	domain.ActivitySwimming: {
		Focus:        "full-body endurance",
		Intensity:    "moderate",
		Improvements: []string{"Work on bilateral breathing to balance your stroke."},
		Suggestions:  []string{"Add drill sets focused on catch and body rotation."},
		LongAfter:    60,
		KcalPerMin:   10,
	},
	domain.ActivityWeightTraining: {
		Focus:        "strength",
		Intensity:    "high",
		Improvements: []string{"Track sets and reps so progressive overload is measurable."},
		Suggestions:  []string{"Leave 48 hours before training the same muscle group again."},
		LongAfter:    90,
		KcalPerMin:   6,
	},
	domain.ActivityYoga: {
		Focus:        "mobility and balance",
		Intensity:    "low",
		Improvements: []string{"Hold key poses longer and focus on controlled breathing."},
		Suggestions:  []string{"Use yoga as active recovery after hard cardio days."},
		LongAfter:    90,
		KcalPerMin:   4,
	},
	domain.ActivityHIIT: {
		Focus:        "anaerobic capacity",
		Intensity:    "very high",
		Improvements: []string{"Keep work intervals hard and rest intervals truly easy."},
		Suggestions:  []string{"Limit HIIT to two or three sessions per week."},
		LongAfter:    40,
		KcalPerMin:   12,
	},
	domain.ActivityCardio: {
		Focus:        "cardiovascular fitness",
		Intensity:    "moderate",
		Improvements: []string{"Vary machines or modalities to avoid overuse."},
		Suggestions:  []string{"Add one longer, steady session per week."},
		LongAfter:    75,
		KcalPerMin:   9,
	},
	domain.ActivityStretching: {
		Focus:        "flexibility",
		Intensity:    "low",
		Improvements: []string{"Stretch warm muscles and avoid bouncing."},
		Suggestions:  []string{"Stretch briefly after every workout."},
		LongAfter:    60,
		KcalPerMin:   3,
	},
}

func lookupProfile(t domain.ActivityType) profile {
	if p, ok := catalog[t]; ok {
		return p
	}
	return defaultProfile
}

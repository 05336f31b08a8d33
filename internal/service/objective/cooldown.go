package objective

import (
	"time"

	"objectivebot/internal/model"
)

// Cooldown windows per cadence. Each is deliberately shorter than the nominal
// period (24h, 168h, 720h) so a user who submits at the earliest allowed
// moment every cycle never drifts to a later time-of-day.
const (
	dailyCooldown   = 22 * time.Hour
	weeklyCooldown  = (7*24 - 6) * time.Hour
	monthlyCooldown = (30*24 - 6) * time.Hour
)

// NextAllowed computes the earliest instant the next submission is accepted.
// The zero time means immediately eligible: never submitted, or a frequency
// the policy does not recognize (unknown cadences fall back to always
// eligible rather than erroring).
func NextAllowed(freq model.Frequency, lastSubmitted *time.Time) time.Time {
	if lastSubmitted == nil {
		return time.Time{}
	}

	switch freq {
	case model.FrequencyDaily:
		return lastSubmitted.Add(dailyCooldown)
	case model.FrequencyWeekly:
		return lastSubmitted.Add(weeklyCooldown)
	case model.FrequencyMonthly:
		return lastSubmitted.Add(monthlyCooldown)
	}
	return time.Time{}
}

// Eligible reports whether a submission at now clears the cooldown window.
// The boundary is inclusive: a submission exactly at NextAllowed is accepted.
func Eligible(freq model.Frequency, lastSubmitted *time.Time, now time.Time) bool {
	next := NextAllowed(freq, lastSubmitted)
	return !now.Before(next)
}

package model

import "time"

// Frequency is the cadence a user intends to repeat an objective.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency validates a raw frequency string from the command surface.
func ParseFrequency(raw string) (Frequency, bool) {
	switch Frequency(raw) {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return Frequency(raw), true
	}
	return "", false
}

// Objective is one user-owned recurring objective. The primary key is
// (UserID, Name). LastSubmitted is nil until the first accepted submission;
// Streak is 0 in that state. LastStreakDay holds only the calendar date of
// the submission that last advanced the streak.
type Objective struct {
	UserID        string     `json:"user_id"`
	Name          string     `json:"name"`
	Frequency     Frequency  `json:"frequency"`
	LastSubmitted *time.Time `json:"last_submitted,omitempty"`
	Streak        int        `json:"streak"`
	LastStreakDay *time.Time `json:"last_streak_day,omitempty"`
	LastReminded  *time.Time `json:"last_reminded,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

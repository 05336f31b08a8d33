package objective

import (
	"time"

	"objectivebot/internal/model"
)

// DateOnly truncates t to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Consecutive reports whether a submission on today's calendar date extends
// the streak last advanced on lastStreakDay. Comparison is on calendar dates,
// not elapsed hours.
//
// daily: exactly one calendar day apart.
// weekly: the day gap divided by 7 floors to 1, so any 7-13 day gap counts.
// monthly: same year and numeric month + 1. December to January never
// satisfies this (12+1 matches no month); that gap is long-standing behavior
// kept as-is.
func Consecutive(freq model.Frequency, lastStreakDay *time.Time, today time.Time) bool {
	if lastStreakDay == nil {
		return false
	}

	last := DateOnly(*lastStreakDay)
	day := DateOnly(today)
	days := int(day.Sub(last).Hours() / 24)

	switch freq {
	case model.FrequencyDaily:
		return days == 1
	case model.FrequencyWeekly:
		return days/7 == 1
	case model.FrequencyMonthly:
		return day.Year() == last.Year() && int(day.Month()) == int(last.Month())+1
	}
	return false
}

// NextStreak returns the streak counter after an accepted submission.
func NextStreak(current int, consecutive bool) int {
	if consecutive {
		return current + 1
	}
	return 1
}

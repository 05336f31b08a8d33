package objective

import (
	"testing"
	"time"

	"objectivebot/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestConsecutiveNoPriorDay(t *testing.T) {
	if Consecutive(model.FrequencyDaily, nil, day(2026, 3, 11)) {
		t.Error("first-ever submission should not be consecutive")
	}
}

func TestConsecutiveDaily(t *testing.T) {
	last := day(2026, 3, 10)

	if !Consecutive(model.FrequencyDaily, &last, day(2026, 3, 11)) {
		t.Error("next calendar day should be consecutive")
	}
	if Consecutive(model.FrequencyDaily, &last, day(2026, 3, 12)) {
		t.Error("skipping a day should break the streak")
	}
	if Consecutive(model.FrequencyDaily, &last, day(2026, 3, 10)) {
		t.Error("same day should not be consecutive")
	}
}

// Calendar-day difference, not 24h elapsed: 11:00 pm to 1:00 am next day is
// consecutive for a daily objective.
func TestConsecutiveDailyCalendarNotElapsed(t *testing.T) {
	last := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	submission := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)

	if !Consecutive(model.FrequencyDaily, &last, submission) {
		t.Error("adjacent calendar days should be consecutive regardless of elapsed hours")
	}
}

func TestConsecutiveWeekly(t *testing.T) {
	last := day(2026, 3, 2)

	cases := []struct {
		daysLater int
		want      bool
	}{
		{6, false},
		{7, true},
		{10, true}, // whole-week-count check, not an exact boundary
		{13, true},
		{14, false},
	}
	for _, tc := range cases {
		submission := last.AddDate(0, 0, tc.daysLater)
		got := Consecutive(model.FrequencyWeekly, &last, submission)
		if got != tc.want {
			t.Errorf("weekly +%dd: consecutive = %v, want %v", tc.daysLater, got, tc.want)
		}
	}
}

func TestConsecutiveMonthly(t *testing.T) {
	nov := day(2026, time.November, 15)

	if !Consecutive(model.FrequencyMonthly, &nov, day(2026, time.December, 2)) {
		t.Error("November to December should be consecutive")
	}
	if Consecutive(model.FrequencyMonthly, &nov, day(2026, time.November, 28)) {
		t.Error("same month should not be consecutive")
	}

	// Year rollover does not count: month 12 + 1 matches no month number.
	dec := day(2026, time.December, 20)
	if Consecutive(model.FrequencyMonthly, &dec, day(2027, time.January, 5)) {
		t.Error("December to January is not consecutive (inherited behavior)")
	}
}

func TestNextStreak(t *testing.T) {
	if got := NextStreak(4, true); got != 5 {
		t.Errorf("streak = %d, want 5", got)
	}
	if got := NextStreak(4, false); got != 1 {
		t.Errorf("streak = %d, want 1", got)
	}
	if got := NextStreak(0, false); got != 1 {
		t.Errorf("first submission streak = %d, want 1", got)
	}
}

package reminder

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"objectivebot/internal/model"
)

type fakeStore struct {
	objectives []model.Objective
}

func (f *fakeStore) ListStale(_ context.Context, cutoff time.Time) ([]model.Objective, error) {
	var stale []model.Objective
	for _, o := range f.objectives {
		submittedStale := o.LastSubmitted == nil || o.LastSubmitted.Before(cutoff)
		remindedStale := o.LastReminded == nil || o.LastReminded.Before(cutoff)
		if submittedStale && remindedStale {
			stale = append(stale, o)
		}
	}
	return stale, nil
}

func (f *fakeStore) MarkReminded(_ context.Context, userID, name string, at time.Time) error {
	for i := range f.objectives {
		if f.objectives[i].UserID == userID && f.objectives[i].Name == name {
			stamped := at
			f.objectives[i].LastReminded = &stamped
		}
	}
	return nil
}

type fakeNotifier struct {
	sent    []string
	dueAts  []time.Time
	failFor map[string]bool
}

func (f *fakeNotifier) SendDirectMessage(_ context.Context, userID, objective, _ string, dueAt time.Time) error {
	if f.failFor[userID] {
		return errors.New("dm undeliverable")
	}
	f.sent = append(f.sent, userID+"/"+objective)
	f.dueAts = append(f.dueAts, dueAt)
	return nil
}

var sweepNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestSweeper(store *fakeStore, notifier *fakeNotifier) *Sweeper {
	return NewSweeper(store, notifier, time.Hour, zap.NewNop()).
		WithClock(func() time.Time { return sweepNow })
}

func ptr(t time.Time) *time.Time { return &t }

func TestSweepRemindsStaleObjective(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "u1", Name: "run", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-25 * time.Hour))},
	}}
	notifier := &fakeNotifier{}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0] != "u1/run" {
		t.Errorf("sent = %v, want [u1/run]", notifier.sent)
	}
	if store.objectives[0].LastReminded == nil || !store.objectives[0].LastReminded.Equal(sweepNow) {
		t.Errorf("lastReminded = %v, want %v", store.objectives[0].LastReminded, sweepNow)
	}
}

func TestSweepSkipsFreshObjective(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "u1", Name: "run", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-time.Hour))},
	}}
	notifier := &fakeNotifier{}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Errorf("sent = %v, want none for a fresh objective", notifier.sent)
	}
}

func TestSweepSelectsNeverSubmitted(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "u1", Name: "run", Frequency: model.FrequencyDaily},
	}}
	notifier := &fakeNotifier{}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(notifier.sent) != 1 {
		t.Errorf("sent = %v, never-submitted objective should be reminded", notifier.sent)
	}
}

func TestSweepDoesNotReRemindWithinWindow(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "u1", Name: "run", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-25 * time.Hour))},
	}}
	notifier := &fakeNotifier{}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep failed: %v", err)
	}
	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Errorf("sent %d reminders, want 1 (no re-remind within 24h)", len(notifier.sent))
	}
}

func TestSweepDispatchCarriesSweepClock(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "u1", Name: "run", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-25 * time.Hour))},
	}}
	notifier := &fakeNotifier{}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	// The dispatch timestamp must be the sweep clock, the same instant that
	// stamps lastReminded. Deriving it from wall time instead would let a
	// sweep straddling midnight change the reminder's dedup day.
	if len(notifier.dueAts) != 1 || !notifier.dueAts[0].Equal(sweepNow) {
		t.Errorf("dispatch time = %v, want the sweep clock %v", notifier.dueAts, sweepNow)
	}
}

func TestSweepIsolatesDispatchFailure(t *testing.T) {
	store := &fakeStore{objectives: []model.Objective{
		{UserID: "broken", Name: "run", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-25 * time.Hour))},
		{UserID: "ok", Name: "read", Frequency: model.FrequencyDaily,
			LastSubmitted: ptr(sweepNow.Add(-25 * time.Hour))},
	}}
	notifier := &fakeNotifier{failFor: map[string]bool{"broken": true}}
	sweeper := newTestSweeper(store, notifier)

	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep should not fail on per-record dispatch errors: %v", err)
	}

	if len(notifier.sent) != 1 || notifier.sent[0] != "ok/read" {
		t.Errorf("sent = %v, want delivery to continue past the failure", notifier.sent)
	}
	if store.objectives[0].LastReminded != nil {
		t.Error("failed dispatch must not stamp lastReminded")
	}
	if store.objectives[1].LastReminded == nil {
		t.Error("successful dispatch should stamp lastReminded")
	}

	// The failed record stays eligible on the next sweep.
	notifier.failFor = nil
	if err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("followup sweep failed: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Errorf("sent = %v, failed record should be retried on the next sweep", notifier.sent)
	}
}

package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	mqcontracts "objectivebot/contracts/mq"
	"objectivebot/pkg/circuitbreaker"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) SendDirectMessage(_ context.Context, userID, content string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, userID+": "+content)
	return nil
}

type fakeDeduper struct {
	seen []string
	keys map[string]bool
}

func (f *fakeDeduper) AcquireOnce(_ context.Context, handler, eventKey string) bool {
	if f.keys == nil {
		f.keys = make(map[string]bool)
	}
	f.seen = append(f.seen, eventKey)
	k := handler + ":" + eventKey
	if f.keys[k] {
		return false
	}
	f.keys[k] = true
	return true
}

type fakeDLQ struct {
	parked [][]byte
	err    error
}

func (f *fakeDLQ) PublishToDLQ(_ string, payload []byte, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.parked = append(f.parked, payload)
	return nil
}

func rawReminder(t *testing.T, userID, objective string, dueAt time.Time) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(mqcontracts.ReminderDuePayload{
		UserID:    userID,
		Objective: objective,
		Message:   "keep it up",
		DueAt:     dueAt,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

var handleDay = time.Date(2026, 3, 10, 23, 30, 0, 0, time.UTC)

func TestHandleDedupesPerUserObjectiveDay(t *testing.T) {
	sender := &fakeSender{}
	deduper := &fakeDeduper{}
	h := NewReminderDueHandler(sender, deduper,
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), &fakeDLQ{}, zap.NewNop())

	ctx := context.Background()
	if err := h.Handle(ctx, rawReminder(t, "u1", "run", handleDay)); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	// Broker redelivery of the same event: same user, objective and day.
	if err := h.Handle(ctx, rawReminder(t, "u1", "run", handleDay)); err != nil {
		t.Fatalf("redelivery must be acked silently: %v", err)
	}
	// Different objective and next day are distinct events.
	if err := h.Handle(ctx, rawReminder(t, "u1", "read", handleDay)); err != nil {
		t.Fatalf("different objective failed: %v", err)
	}
	if err := h.Handle(ctx, rawReminder(t, "u1", "run", handleDay.Add(24*time.Hour))); err != nil {
		t.Fatalf("next-day reminder failed: %v", err)
	}

	if len(sender.sent) != 3 {
		t.Errorf("sent %d DMs, want 3 (one per user/objective/day)", len(sender.sent))
	}
	if deduper.seen[0] != "u1:run:2026-03-10" {
		t.Errorf("dedup key = %q, want %q", deduper.seen[0], "u1:run:2026-03-10")
	}
}

func TestHandleBreakerOpenShortCircuits(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat api down")}
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Config{
		FailureThreshold:    1,
		SuccessThreshold:    1,
		Timeout:             time.Minute,
		HalfOpenMaxRequests: 1,
	})
	h := NewReminderDueHandler(sender, &fakeDeduper{}, breaker, &fakeDLQ{}, zap.NewNop())

	ctx := context.Background()
	if err := h.Handle(ctx, rawReminder(t, "u1", "run", handleDay)); err == nil {
		t.Fatal("failed delivery should surface as an error")
	}

	sender.err = nil
	err := h.Handle(ctx, rawReminder(t, "u2", "run", handleDay))
	if !errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
		t.Fatalf("err = %v, want ErrCircuitBreakerOpen while the breaker is open", err)
	}
	if len(sender.sent) != 0 {
		t.Error("sender must not be called while the breaker is open")
	}
}

func TestHandleMalformedPayloadGoesToDLQ(t *testing.T) {
	sender := &fakeSender{}
	dlq := &fakeDLQ{}
	h := NewReminderDueHandler(sender, &fakeDeduper{},
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), dlq, zap.NewNop())

	raw := json.RawMessage(`{"user_id": 42`)
	if err := h.Handle(context.Background(), raw); err != nil {
		t.Fatalf("malformed payload must be acked after dead-lettering, got: %v", err)
	}

	if len(dlq.parked) != 1 || string(dlq.parked[0]) != `{"user_id": 42` {
		t.Errorf("parked = %q, want the raw message on the DLQ", dlq.parked)
	}
	if len(sender.sent) != 0 {
		t.Error("malformed payload must not reach the sender")
	}
}

func TestHandleKeepsMessageWhenDeadLetterFails(t *testing.T) {
	dlq := &fakeDLQ{err: errors.New("channel closed")}
	h := NewReminderDueHandler(&fakeSender{}, &fakeDeduper{},
		circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()), dlq, zap.NewNop())

	if err := h.Handle(context.Background(), json.RawMessage(`not json`)); err == nil {
		t.Error("want an error when the message can be neither handled nor parked")
	}
}

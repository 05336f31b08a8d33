package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	mqcontracts "objectivebot/contracts/mq"
	"objectivebot/internal/notify"
	"objectivebot/pkg/circuitbreaker"
	"objectivebot/pkg/metrics"
)

// DMSender delivers one direct message to a user.
type DMSender interface {
	SendDirectMessage(ctx context.Context, userID, content string) error
}

// Deduper suppresses duplicate handling of an event key across redeliveries.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, eventKey string) bool
}

// DeadLetterer parks messages that can never be processed.
type DeadLetterer interface {
	PublishToDLQ(routingKey string, payload []byte, originalError string) error
}

// ReminderDueHandler consumes reminder.due events and delivers the DM through
// the chat platform, behind a circuit breaker so a dead chat API doesn't burn
// through the queue.
type ReminderDueHandler struct {
	sender  DMSender
	deduper Deduper
	breaker *circuitbreaker.CircuitBreaker
	dlq     DeadLetterer
	logger  *zap.Logger
}

func NewReminderDueHandler(
	sender DMSender,
	deduper Deduper,
	breaker *circuitbreaker.CircuitBreaker,
	dlq DeadLetterer,
	logger *zap.Logger,
) *ReminderDueHandler {
	return &ReminderDueHandler{
		sender:  sender,
		deduper: deduper,
		breaker: breaker,
		dlq:     dlq,
		logger:  logger,
	}
}

func (h *ReminderDueHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p mqcontracts.ReminderDuePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		// A payload that doesn't decode will never decode. Park it on the
		// DLQ and ack, so it can't requeue forever. Only a failed DLQ
		// publish leaves the message on the main queue.
		h.logger.Error("Invalid ReminderDuePayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		if dlqErr := h.dlq.PublishToDLQ(notify.RoutingKeyReminderDue, raw, err.Error()); dlqErr != nil {
			h.logger.Error("Failed to dead-letter message", zap.Error(dlqErr))
			return dlqErr
		}
		return nil
	}

	h.logger.Info("Handling reminder.due event",
		zap.String("user_id", p.UserID),
		zap.String("objective", p.Objective),
	)

	// One DM per (user, objective, day) even if the broker redelivers.
	eventKey := fmt.Sprintf("%s:%s:%s", p.UserID, p.Objective, p.DueAt.UTC().Format("2006-01-02"))
	if !h.deduper.AcquireOnce(ctx, "reminder.dm", eventKey) {
		return nil
	}

	start := time.Now()
	err := h.breaker.Execute(func() error {
		return h.sender.SendDirectMessage(ctx, p.UserID, p.Message)
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) {
			h.logger.Warn("DM delivery short-circuited, breaker open",
				zap.String("user_id", p.UserID),
			)
		} else {
			h.logger.Error("DM delivery failed",
				zap.String("user_id", p.UserID),
				zap.String("objective", p.Objective),
				zap.Error(err),
			)
		}
		metrics.RecordDMDeliveryLatency("failed", time.Since(start))
		return err
	}

	metrics.RecordDMDeliveryLatency("sent", time.Since(start))
	h.logger.Info("Reminder DM delivered",
		zap.String("user_id", p.UserID),
		zap.String("objective", p.Objective),
	)
	return nil
}

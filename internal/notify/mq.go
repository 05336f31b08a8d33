package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	mqcontracts "objectivebot/contracts/mq"
	"objectivebot/pkg/mq"
)

// RoutingKeyReminderDue is the routing key for reminder events.
const RoutingKeyReminderDue = "reminder.due"

// MQNotifier dispatches reminders by publishing reminder.due events; the
// delivery worker turns them into chat-platform DMs. A successful publish
// counts as a successful dispatch.
type MQNotifier struct {
	publisher *mq.Publisher
	logger    *zap.Logger
}

func NewMQNotifier(publisher *mq.Publisher, logger *zap.Logger) *MQNotifier {
	return &MQNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

// SendDirectMessage publishes the reminder with the sweep's own timestamp, so
// the worker's per-day dedupe key is derived from when the sweep decided to
// remind, not from when the publish happened.
func (n *MQNotifier) SendDirectMessage(ctx context.Context, userID, objective, text string, dueAt time.Time) error {
	payload := mqcontracts.ReminderDuePayload{
		UserID:    userID,
		Objective: objective,
		Message:   text,
		DueAt:     dueAt,
	}

	if err := n.publisher.Publish(RoutingKeyReminderDue, payload); err != nil {
		return err
	}

	n.logger.Debug("Published reminder.due event",
		zap.String("user_id", userID),
		zap.String("objective", objective),
	)
	return nil
}

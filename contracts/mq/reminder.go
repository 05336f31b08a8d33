package mq

import "time"

// ReminderDuePayload is published on routing key "reminder.due" when the
// sweep finds an objective stale for more than the reminder window.
type ReminderDuePayload struct {
	UserID    string    `json:"user_id"`
	Objective string    `json:"objective"`
	Message   string    `json:"message"`
	DueAt     time.Time `json:"due_at"`
}

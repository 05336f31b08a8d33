package reminder

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"objectivebot/internal/model"
	"objectivebot/pkg/metrics"
)

// StaleAfter is how long an objective may go without a submission before the
// owner is reminded, and also the minimum gap between reminders for one
// objective.
const StaleAfter = 24 * time.Hour

// Store is the slice of the objective table the sweep needs.
type Store interface {
	ListStale(ctx context.Context, cutoff time.Time) ([]model.Objective, error)
	MarkReminded(ctx context.Context, userID, name string, at time.Time) error
}

// Notifier dispatches one direct message to a user about one objective.
// dueAt is the sweep timestamp the reminder was decided at.
type Notifier interface {
	SendDirectMessage(ctx context.Context, userID, objective, text string, dueAt time.Time) error
}

// Sweeper periodically scans for stale objectives and dispatches reminders.
// Each record is handled independently: one failed dispatch never aborts the
// rest of the sweep, and the record stays eligible for the next interval.
type Sweeper struct {
	store    Store
	notifier Notifier
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time
}

func NewSweeper(store Store, notifier Notifier, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{
		store:    store,
		notifier: notifier,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// WithClock replaces the sweeper clock.
func (s *Sweeper) WithClock(now func() time.Time) *Sweeper {
	s.now = now
	return s
}

// Start runs an immediate sweep and then one per interval until ctx is
// cancelled. It blocks and should be called in a goroutine.
func (s *Sweeper) Start(ctx context.Context) {
	s.logger.Info("Reminder sweeper started", zap.Duration("interval", s.interval))

	if err := s.Sweep(ctx); err != nil {
		s.logger.Error("Initial sweep failed", zap.Error(err))
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder sweeper stopped")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("Sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep performs one pass: select stale objectives, dispatch a reminder for
// each, and stamp last_reminded only after a successful dispatch.
func (s *Sweeper) Sweep(ctx context.Context) error {
	now := s.now()
	cutoff := now.Add(-StaleAfter)

	stale, err := s.store.ListStale(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list stale objectives: %w", err)
	}

	if len(stale) == 0 {
		s.logger.Debug("No stale objectives found")
		return nil
	}

	s.logger.Info("Dispatching reminders", zap.Int("stale_count", len(stale)))

	sent := 0
	for _, o := range stale {
		text := fmt.Sprintf("You haven't submitted %q in over 24 hours. Keep the streak alive!", o.Name)

		if err := s.notifier.SendDirectMessage(ctx, o.UserID, o.Name, text, now); err != nil {
			s.logger.Error("Reminder dispatch failed",
				zap.String("user_id", o.UserID),
				zap.String("name", o.Name),
				zap.Error(err),
			)
			metrics.RecordReminderDispatch("failed")
			continue
		}

		if err := s.store.MarkReminded(ctx, o.UserID, o.Name, now); err != nil {
			s.logger.Error("Failed to mark objective reminded",
				zap.String("user_id", o.UserID),
				zap.String("name", o.Name),
				zap.Error(err),
			)
			continue
		}

		metrics.RecordReminderDispatch("sent")
		sent++
	}

	s.logger.Info("Sweep completed",
		zap.Int("stale_count", len(stale)),
		zap.Int("sent_count", sent),
	)
	return nil
}

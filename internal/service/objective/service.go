package objective

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"objectivebot/internal/model"
	"objectivebot/pkg/metrics"
)

// Service owns the objective lifecycle: create, submit proof, list, delete.
type Service struct {
	store  Store
	locks  Locker
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, locks Locker, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		locks:  locks,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	Streak        int
	NextAllowed   time.Time
	AttachmentURL string
}

// ObjectiveStatus is one row of a list_objectives response.
type ObjectiveStatus struct {
	Name        string
	Frequency   model.Frequency
	Available   bool
	NextAllowed time.Time
	Streak      int
}

// Create registers a new objective with all temporal fields unset.
func (s *Service) Create(ctx context.Context, userID, name string, freq model.Frequency) error {
	name = strings.TrimSpace(name)

	created, err := s.store.Create(ctx, userID, name, freq)
	if err != nil {
		return fmt.Errorf("create objective: %w", err)
	}
	if !created {
		return ErrAlreadyExists
	}
	return nil
}

// Submit runs the cooldown-and-streak transaction for one objective.
// Exactly one persisted write happens on acceptance; none on rejection.
func (s *Service) Submit(ctx context.Context, userID, name, attachmentURL string) (*SubmitResult, error) {
	name = strings.TrimSpace(name)

	if s.locks != nil {
		release, ok := s.locks.Acquire(ctx, userID+":"+name)
		if !ok {
			metrics.RecordSubmission("conflict")
			return nil, ErrSubmissionInFlight
		}
		defer release()
	}

	o, err := s.store.Get(ctx, userID, name)
	if err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("load objective: %w", err)
	}
	if o == nil {
		metrics.RecordSubmission("not_found")
		return nil, ErrNotFound
	}

	now := s.now()
	next := NextAllowed(o.Frequency, o.LastSubmitted)
	if o.LastSubmitted != nil && now.Before(next) {
		s.logger.Info("Submission rejected, cooldown active",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.Time("next_allowed", next),
		)
		metrics.RecordSubmission("cooldown")
		return nil, &CooldownError{NextAllowed: next}
	}

	// Streak is judged against the pre-submission streak day.
	today := DateOnly(now)
	consecutive := Consecutive(o.Frequency, o.LastStreakDay, now)

	o.Streak = NextStreak(o.Streak, consecutive)
	o.LastSubmitted = &now
	o.LastStreakDay = &today

	if err := s.store.Upsert(ctx, o); err != nil {
		metrics.RecordSubmission("error")
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	s.logger.Info("Submission accepted",
		zap.String("user_id", userID),
		zap.String("name", name),
		zap.Int("streak", o.Streak),
		zap.Bool("consecutive", consecutive),
	)
	metrics.RecordSubmission("accepted")

	return &SubmitResult{
		Streak:        o.Streak,
		NextAllowed:   NextAllowed(o.Frequency, o.LastSubmitted),
		AttachmentURL: attachmentURL,
	}, nil
}

// List returns the user's objectives with availability computed at call time.
func (s *Service) List(ctx context.Context, userID string) ([]ObjectiveStatus, error) {
	objectives, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list objectives: %w", err)
	}

	now := s.now()
	statuses := make([]ObjectiveStatus, 0, len(objectives))
	for _, o := range objectives {
		next := NextAllowed(o.Frequency, o.LastSubmitted)
		statuses = append(statuses, ObjectiveStatus{
			Name:        o.Name,
			Frequency:   o.Frequency,
			Available:   !now.Before(next),
			NextAllowed: next,
			Streak:      o.Streak,
		})
	}
	return statuses, nil
}

// Delete removes one objective; deleting a missing key is surfaced as
// ErrNotFound and mutates nothing.
func (s *Service) Delete(ctx context.Context, userID, name string) error {
	name = strings.TrimSpace(name)

	deleted, err := s.store.Delete(ctx, userID, name)
	if err != nil {
		return fmt.Errorf("delete objective: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

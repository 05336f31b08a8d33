package objective

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound means no objective exists for (user, name).
	ErrNotFound = errors.New("objective not found")
	// ErrAlreadyExists means a create collided with an existing objective.
	ErrAlreadyExists = errors.New("objective already exists")
	// ErrSubmissionInFlight means another submission holds the per-key lock.
	ErrSubmissionInFlight = errors.New("submission already in flight")
)

// CooldownError rejects a submission made before the objective is eligible
// again. No mutation happens on this path.
type CooldownError struct {
	NextAllowed time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active until %s", e.NextAllowed.UTC().Format(time.RFC3339))
}

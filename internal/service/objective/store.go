package objective

import (
	"context"

	"objectivebot/internal/model"
)

// Store is the durable objective table. Every read reflects the latest write;
// there is no caching layer in front of it.
type Store interface {
	Get(ctx context.Context, userID, name string) (*model.Objective, error)
	ListByUser(ctx context.Context, userID string) ([]model.Objective, error)
	Create(ctx context.Context, userID, name string, freq model.Frequency) (bool, error)
	Upsert(ctx context.Context, o *model.Objective) error
	Delete(ctx context.Context, userID, name string) (bool, error)
}

// Locker serializes submissions per (user, objective) key. Acquire returns a
// release func and whether the lock was obtained; implementations fail open
// when the coordination backend is unavailable.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), ok bool)
}

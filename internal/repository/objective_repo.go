package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"objectivebot/internal/model"
	"objectivebot/pkg/metrics"
)

type ObjectiveRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewObjectiveRepository(db *pgxpool.Pool, logger *zap.Logger) *ObjectiveRepository {
	return &ObjectiveRepository{
		db:     db,
		logger: logger,
	}
}

const objectiveColumns = `user_id, name, frequency, last_submitted, streak, last_streak_day, last_reminded, created_at`

func scanObjective(row pgx.Row) (*model.Objective, error) {
	var o model.Objective
	err := row.Scan(
		&o.UserID,
		&o.Name,
		&o.Frequency,
		&o.LastSubmitted,
		&o.Streak,
		&o.LastStreakDay,
		&o.LastReminded,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Get returns the objective for (userID, name), or nil when absent.
func (r *ObjectiveRepository) Get(ctx context.Context, userID, name string) (*model.Objective, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("get", "objectives", start)

	query := `
        SELECT ` + objectiveColumns + `
        FROM objectives
        WHERE user_id = $1 AND name = $2
    `
	o, err := scanObjective(r.db.QueryRow(ctx, query, userID, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get objective",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

// ListByUser returns all objectives owned by userID, ordered by name.
func (r *ObjectiveRepository) ListByUser(ctx context.Context, userID string) ([]model.Objective, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("list_by_user", "objectives", start)

	r.logger.Debug("Listing objectives for user", zap.String("user_id", userID))

	query := `
        SELECT ` + objectiveColumns + `
        FROM objectives
        WHERE user_id = $1
        ORDER BY name
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list objectives", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var objectives []model.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			r.logger.Error("Failed to scan objective", zap.Error(err))
			return nil, err
		}
		objectives = append(objectives, *o)
	}

	r.logger.Debug("Listed objectives",
		zap.String("user_id", userID),
		zap.Int("count", len(objectives)),
	)
	return objectives, rows.Err()
}

// Create inserts a fresh objective record with all temporal fields unset.
// It returns false when (userID, name) already exists.
func (r *ObjectiveRepository) Create(ctx context.Context, userID, name string, freq model.Frequency) (bool, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("create", "objectives", start)

	query := `
        INSERT INTO objectives (user_id, name, frequency, streak)
        VALUES ($1, $2, $3, 0)
        ON CONFLICT (user_id, name) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, userID, name, freq)
	if err != nil {
		r.logger.Error("Failed to create objective",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.Error(err),
		)
		return false, err
	}

	created := tag.RowsAffected() > 0
	if created {
		r.logger.Info("Objective created",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.String("frequency", string(freq)),
		)
	}
	return created, nil
}

// Upsert replaces the non-key fields of an objective record.
func (r *ObjectiveRepository) Upsert(ctx context.Context, o *model.Objective) error {
	start := time.Now()
	defer metrics.ObserveDBQuery("upsert", "objectives", start)

	query := `
        INSERT INTO objectives (user_id, name, frequency, last_submitted, streak, last_streak_day, last_reminded)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id, name) DO UPDATE SET
            frequency = EXCLUDED.frequency,
            last_submitted = EXCLUDED.last_submitted,
            streak = EXCLUDED.streak,
            last_streak_day = EXCLUDED.last_streak_day,
            last_reminded = EXCLUDED.last_reminded
    `
	_, err := r.db.Exec(ctx, query,
		o.UserID,
		o.Name,
		o.Frequency,
		o.LastSubmitted,
		o.Streak,
		o.LastStreakDay,
		o.LastReminded,
	)
	if err != nil {
		r.logger.Error("Failed to upsert objective",
			zap.String("user_id", o.UserID),
			zap.String("name", o.Name),
			zap.Error(err),
		)
		return err
	}

	r.logger.Debug("Objective upserted",
		zap.String("user_id", o.UserID),
		zap.String("name", o.Name),
		zap.Int("streak", o.Streak),
	)
	return nil
}

// Delete removes the objective for (userID, name). It returns false when no
// row existed.
func (r *ObjectiveRepository) Delete(ctx context.Context, userID, name string) (bool, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("delete", "objectives", start)

	query := `
        DELETE FROM objectives
        WHERE user_id = $1 AND name = $2
    `
	tag, err := r.db.Exec(ctx, query, userID, name)
	if err != nil {
		r.logger.Error("Failed to delete objective",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.Error(err),
		)
		return false, err
	}

	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Info("Objective deleted",
			zap.String("user_id", userID),
			zap.String("name", name),
		)
	}
	return deleted, nil
}

// ListStale returns every objective whose last submission and last reminder
// are both older than cutoff (or absent).
func (r *ObjectiveRepository) ListStale(ctx context.Context, cutoff time.Time) ([]model.Objective, error) {
	start := time.Now()
	defer metrics.ObserveDBQuery("list_stale", "objectives", start)

	query := `
        SELECT ` + objectiveColumns + `
        FROM objectives
        WHERE (last_submitted IS NULL OR last_submitted < $1)
          AND (last_reminded IS NULL OR last_reminded < $1)
        ORDER BY user_id, name
    `
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		r.logger.Error("Failed to list stale objectives", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var objectives []model.Objective
	for rows.Next() {
		o, err := scanObjective(rows)
		if err != nil {
			r.logger.Error("Failed to scan stale objective", zap.Error(err))
			return nil, err
		}
		objectives = append(objectives, *o)
	}

	r.logger.Debug("Listed stale objectives", zap.Int("count", len(objectives)))
	return objectives, rows.Err()
}

// MarkReminded stamps last_reminded for one objective.
func (r *ObjectiveRepository) MarkReminded(ctx context.Context, userID, name string, at time.Time) error {
	start := time.Now()
	defer metrics.ObserveDBQuery("mark_reminded", "objectives", start)

	query := `
        UPDATE objectives
        SET last_reminded = $3
        WHERE user_id = $1 AND name = $2
    `
	_, err := r.db.Exec(ctx, query, userID, name, at)
	if err != nil {
		r.logger.Error("Failed to mark objective reminded",
			zap.String("user_id", userID),
			zap.String("name", name),
			zap.Error(err),
		)
		return err
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/liveqai/eventhub/internal/model"
)

// PostgresJoinAttemptRepository implements JoinAttemptRepository.
type PostgresJoinAttemptRepository struct {
	db *DB
}

func NewPostgresJoinAttemptRepository(db *DB) *PostgresJoinAttemptRepository {
	return &PostgresJoinAttemptRepository{db: db}
}

func (r *PostgresJoinAttemptRepository) RecordJoinAttempt(ctx context.Context, attempt *model.JoinAttempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO join_attempts (id, event_id, device_id, display_name, accepted, reason, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		attempt.ID, attempt.EventID, attempt.DeviceID, attempt.DisplayName, attempt.Accepted, attempt.Reason, attempt.AttemptedAt)
	if err != nil {
		return fmt.Errorf("record join attempt: %w", err)
	}
	return nil
}

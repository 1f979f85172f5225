package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// PostgresSegmentRepository implements SegmentRepository.
type PostgresSegmentRepository struct {
	db *DB
}

func NewPostgresSegmentRepository(db *DB) *PostgresSegmentRepository {
	return &PostgresSegmentRepository{db: db}
}

func (r *PostgresSegmentRepository) GetSegment(ctx context.Context, id uuid.UUID) (*model.Segment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, event_id, presenter_id, presenter_name, position, status, created_at, updated_at
		FROM segments WHERE id = $1`, id)
	return scanSegment(row)
}

func (r *PostgresSegmentRepository) GetSegmentsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, presenter_id, presenter_name, position, status, created_at, updated_at
		FROM segments WHERE event_id = $1 ORDER BY position ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("get segments by event: %w", err)
	}
	defer rows.Close()

	var segments []model.Segment
	for rows.Next() {
		var s model.Segment
		if err := rows.Scan(&s.ID, &s.EventID, &s.PresenterID, &s.PresenterName, &s.Position, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, s)
	}
	return segments, rows.Err()
}

func (r *PostgresSegmentRepository) SetSegmentStatus(ctx context.Context, id uuid.UUID, status model.SegmentStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE segments SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set segment status: %w", err)
	}
	return nil
}

func scanSegment(row *sql.Row) (*model.Segment, error) {
	var s model.Segment
	err := row.Scan(&s.ID, &s.EventID, &s.PresenterID, &s.PresenterName, &s.Position, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan segment: %w", err)
	}
	return &s, nil
}

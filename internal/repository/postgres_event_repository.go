package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// PostgresEventRepository implements EventRepository over the shared DB
// pool.
type PostgresEventRepository struct {
	db *DB
}

func NewPostgresEventRepository(db *DB) *PostgresEventRepository {
	return &PostgresEventRepository{db: db}
}

func (r *PostgresEventRepository) GetEvent(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, host_id, join_code, status, join_locked, join_locked_at, created_at, updated_at
		FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (r *PostgresEventRepository) GetEventByCode(ctx context.Context, code string) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, host_id, join_code, status, join_locked, join_locked_at, created_at, updated_at
		FROM events WHERE join_code = $1`, code)
	return scanEvent(row)
}

func (r *PostgresEventRepository) CreateEvent(ctx context.Context, event *model.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, title, host_id, join_code, status, join_locked, join_locked_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Title, event.HostID, event.JoinCode, event.Status,
		event.JoinLocked, event.JoinLockedAt, event.CreatedAt, event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) SetEventStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error {
	_, err := r.db.ExecContext(ctx, `UPDATE events SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	return nil
}

// SetEventJoinLock records the host locking or unlocking admission: a
// host locks join during a quiz segment, then unlocks once it's safe to
// let late devices in again. joinflow checks locked_at against the
// grace window.
func (r *PostgresEventRepository) SetEventJoinLock(ctx context.Context, id uuid.UUID, locked bool, lockedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE events SET join_locked = $2, join_locked_at = $3, updated_at = now() WHERE id = $1`,
		id, locked, lockedAt)
	if err != nil {
		return fmt.Errorf("set event join lock: %w", err)
	}
	return nil
}

func (r *PostgresEventRepository) FindActiveEventForDevice(ctx context.Context, deviceID string, excludeEventID uuid.UUID) (*model.Event, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT e.id, e.title, e.host_id, e.join_code, e.status, e.join_locked, e.join_locked_at, e.created_at, e.updated_at
		FROM events e
		JOIN event_participants p ON p.event_id = e.id
		WHERE p.device_id = $1 AND e.status IN ('SCHEDULED', 'LIVE') AND e.id != $2
		LIMIT 1`, deviceID, excludeEventID)
	event, err := scanEvent(row)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return event, err
}

func scanEvent(row *sql.Row) (*model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.HostID, &e.JoinCode, &e.Status, &e.JoinLocked, &e.JoinLockedAt, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return &e, nil
}

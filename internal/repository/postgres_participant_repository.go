package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// PostgresParticipantRepository implements ParticipantRepository.
type PostgresParticipantRepository struct {
	db *DB
}

func NewPostgresParticipantRepository(db *DB) *PostgresParticipantRepository {
	return &PostgresParticipantRepository{db: db}
}

const participantColumns = `id, event_id, device_id, display_name, avatar, session_token, joined_at, is_late_joiner, total_score, total_response_time_ms`

func (r *PostgresParticipantRepository) GetParticipantByDevice(ctx context.Context, eventID uuid.UUID, deviceID string) (*model.Participant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+participantColumns+`
		FROM event_participants WHERE event_id = $1 AND device_id = $2`, eventID, deviceID)
	return scanParticipant(row)
}

func (r *PostgresParticipantRepository) GetParticipant(ctx context.Context, id uuid.UUID) (*model.Participant, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+participantColumns+`
		FROM event_participants WHERE id = $1`, id)
	return scanParticipant(row)
}

func (r *PostgresParticipantRepository) GetParticipantsByEvent(ctx context.Context, eventID uuid.UUID) ([]model.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM event_participants WHERE event_id = $1`, eventID)
	if err != nil {
		return nil, fmt.Errorf("get participants by event: %w", err)
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.DeviceID, &p.DisplayName, &p.Avatar, &p.SessionToken, &p.JoinedAt, &p.IsLateJoiner, &p.TotalScore, &p.TotalResponseTimeMs); err != nil {
			return nil, fmt.Errorf("scan participant row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresParticipantRepository) CreateParticipant(ctx context.Context, p *model.Participant) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO event_participants (`+participantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.EventID, p.DeviceID, p.DisplayName, p.Avatar, p.SessionToken, p.JoinedAt, p.IsLateJoiner, p.TotalScore, p.TotalResponseTimeMs)
	if err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

func (r *PostgresParticipantRepository) UpdateParticipant(ctx context.Context, p *model.Participant) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_participants SET display_name = $2, avatar = $3, session_token = $4, is_late_joiner = $5 WHERE id = $1`,
		p.ID, p.DisplayName, p.Avatar, p.SessionToken, p.IsLateJoiner)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return nil
}

func scanParticipant(row *sql.Row) (*model.Participant, error) {
	var p model.Participant
	err := row.Scan(&p.ID, &p.EventID, &p.DeviceID, &p.DisplayName, &p.Avatar, &p.SessionToken, &p.JoinedAt, &p.IsLateJoiner, &p.TotalScore, &p.TotalResponseTimeMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	return &p, nil
}

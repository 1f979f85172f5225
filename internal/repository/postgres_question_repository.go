package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// PostgresQuestionRepository implements QuestionRepository.
type PostgresQuestionRepository struct {
	db *DB
}

func NewPostgresQuestionRepository(db *DB) *PostgresQuestionRepository {
	return &PostgresQuestionRepository{db: db}
}

func (r *PostgresQuestionRepository) GetQuestionsBySegment(ctx context.Context, segmentID uuid.UUID) ([]model.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, segment_id, text, option_a, option_b, option_c, option_d, correct_option, position, time_limit_ms, created_at
		FROM questions WHERE segment_id = $1 ORDER BY position ASC`, segmentID)
	if err != nil {
		return nil, fmt.Errorf("get questions by segment: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func (r *PostgresQuestionRepository) CountEventQuestions(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT count(*) FROM questions q
		JOIN segments s ON s.id = q.segment_id
		WHERE s.event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count event questions: %w", err)
	}
	return count, nil
}

func (r *PostgresQuestionRepository) AggregateEventQuestions(ctx context.Context, eventID uuid.UUID, max int) ([]model.Question, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.segment_id, q.text, q.option_a, q.option_b, q.option_c, q.option_d, q.correct_option, q.position, q.time_limit_ms, q.created_at
		FROM questions q
		JOIN segments s ON s.id = q.segment_id
		WHERE s.event_id = $1
		ORDER BY random()
		LIMIT NULLIF($2, 0)`, eventID, max)
	if err != nil {
		return nil, fmt.Errorf("aggregate event questions: %w", err)
	}
	defer rows.Close()
	return scanQuestions(rows)
}

func scanQuestions(rows *sql.Rows) ([]model.Question, error) {
	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.SegmentID, &q.Text, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.CorrectOption, &q.Position, &q.TimeLimitMs, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

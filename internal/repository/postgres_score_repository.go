package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/liveqai/eventhub/internal/model"
)

// PostgresScoreRepository implements ScoreRepository. Each scoring delta
// updates both the segment_scores row and the participant's running
// totals inside one transaction, so a crash can never leave them
// disagreeing.
type PostgresScoreRepository struct {
	db *DB
}

func NewPostgresScoreRepository(db *DB) *PostgresScoreRepository {
	return &PostgresScoreRepository{db: db}
}

func (r *PostgresScoreRepository) UpsertSegmentScore(ctx context.Context, segmentID, participantID uuid.UUID, deltaScore int, correctInc int, responseTimeIncMs int64) error {
	return r.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO segment_scores (segment_id, participant_id, score, questions_answered, questions_correct, total_response_time_ms)
			VALUES ($1, $2, $3, 1, $4, $5)
			ON CONFLICT (segment_id, participant_id) DO UPDATE SET
				score = segment_scores.score + EXCLUDED.score,
				questions_answered = segment_scores.questions_answered + 1,
				questions_correct = segment_scores.questions_correct + $4,
				total_response_time_ms = segment_scores.total_response_time_ms + $5`,
			segmentID, participantID, deltaScore, correctInc, responseTimeIncMs)
		if err != nil {
			return fmt.Errorf("upsert segment score: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE event_participants p SET
				total_score = COALESCE((SELECT sum(score) FROM segment_scores WHERE participant_id = p.id), 0),
				total_response_time_ms = COALESCE((SELECT sum(total_response_time_ms) FROM segment_scores WHERE participant_id = p.id), 0)
			WHERE p.id = $1`, participantID)
		if err != nil {
			return fmt.Errorf("update participant totals: %w", err)
		}
		return nil
	})
}

func (r *PostgresScoreRepository) GetSegmentLeaderboard(ctx context.Context, segmentID uuid.UUID) ([]model.SegmentScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT segment_id, participant_id, score, questions_answered, questions_correct, total_response_time_ms
		FROM segment_scores WHERE segment_id = $1
		ORDER BY score DESC, total_response_time_ms ASC`, segmentID)
	if err != nil {
		return nil, fmt.Errorf("get segment leaderboard: %w", err)
	}
	defer rows.Close()
	return scanSegmentScores(rows)
}

// GetEventLeaderboard aggregates every segment's score row per participant
// across the whole event. The group-by is deliberately participant_id only
// (not segment_id) so that a participant who scored in two segments gets
// one summed row, not one row per segment.
func (r *PostgresScoreRepository) GetEventLeaderboard(ctx context.Context, eventID uuid.UUID) ([]model.SegmentScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.participant_id, sum(s.score), sum(s.questions_answered), sum(s.questions_correct), sum(s.total_response_time_ms)
		FROM segment_scores s
		JOIN segments seg ON seg.id = s.segment_id
		WHERE seg.event_id = $1
		GROUP BY s.participant_id
		ORDER BY sum(s.score) DESC, sum(s.total_response_time_ms) ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event leaderboard: %w", err)
	}
	defer rows.Close()

	var scores []model.SegmentScore
	for rows.Next() {
		var s model.SegmentScore
		if err := rows.Scan(&s.ParticipantID, &s.Score, &s.QuestionsAnswered, &s.QuestionsCorrect, &s.TotalResponseTimeMs); err != nil {
			return nil, fmt.Errorf("scan event leaderboard row: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

func scanSegmentScores(rows *sql.Rows) ([]model.SegmentScore, error) {
	var scores []model.SegmentScore
	for rows.Next() {
		var s model.SegmentScore
		if err := rows.Scan(&s.SegmentID, &s.ParticipantID, &s.Score, &s.QuestionsAnswered, &s.QuestionsCorrect, &s.TotalResponseTimeMs); err != nil {
			return nil, fmt.Errorf("scan segment score: %w", err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

package repository

// PostgresRepository composes every per-aggregate Postgres repository
// into the single Repository the hub depends on.
type PostgresRepository struct {
	*PostgresEventRepository
	*PostgresSegmentRepository
	*PostgresQuestionRepository
	*PostgresParticipantRepository
	*PostgresScoreRepository
	*PostgresJoinAttemptRepository
}

// NewPostgresRepository wires every per-aggregate repository against the
// shared DB pool.
func NewPostgresRepository(db *DB) *PostgresRepository {
	return &PostgresRepository{
		PostgresEventRepository:       NewPostgresEventRepository(db),
		PostgresSegmentRepository:     NewPostgresSegmentRepository(db),
		PostgresQuestionRepository:    NewPostgresQuestionRepository(db),
		PostgresParticipantRepository: NewPostgresParticipantRepository(db),
		PostgresScoreRepository:       NewPostgresScoreRepository(db),
		PostgresJoinAttemptRepository: NewPostgresJoinAttemptRepository(db),
	}
}

var _ Repository = (*PostgresRepository)(nil)

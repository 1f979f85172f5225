package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/liveqai/eventhub/internal/config"
	_ "github.com/lib/pq"
)

// DB wraps the shared *sql.DB pool. Scoring writes go through
// Transaction so the segment_scores delta and the participant totals
// always commit together.
type DB struct {
	*sql.DB
}

// NewPostgresDB opens and pings a Postgres connection pool.
func NewPostgresDB(cfg config.PostgresConfig) (*DB, error) {
	db, err := sql.Open("postgres", cfg.GetConnectionString())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &DB{db}, nil
}

// Transaction runs fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx: %v (rollback: %v)", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/akiii/botforge/internal/domain"
	"github.com/akiii/botforge/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		bot_name TEXT NOT NULL,
		spec TEXT NOT NULL,
		command_count INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL,
		detail TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created ON builds(created_at);
	CREATE INDEX IF NOT EXISTS idx_builds_user ON builds(user_id);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertBuild records one generation attempt, retrying briefly on SQLite
// concurrency errors.
func (s *SQLiteStore) InsertBuild(ctx context.Context, rec *domain.BuildRecord) error {
	query := `
	INSERT INTO builds (build_id, user_id, channel_id, bot_name, spec, command_count, outcome, detail, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var detail interface{}
	if rec.Detail != "" {
		detail = rec.Detail
	}

	var err error
	for attempt := 0; attempt < 3; attempt++ {
		_, err = s.db.ExecContext(ctx, query,
			rec.BuildID, rec.UserID, rec.ChannelID, rec.BotName, rec.Spec,
			rec.CommandCount, string(rec.Outcome), detail, rec.CreatedAt.Unix(),
		)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) {
			break
		}
		time.Sleep(time.Duration(attempt+1) * 50 * time.Millisecond)
	}
	return fmt.Errorf("insert build record: %w", err)
}

// RecentBuilds returns the most recent build records, newest first.
func (s *SQLiteStore) RecentBuilds(ctx context.Context, limit int) ([]*domain.BuildRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT build_id, user_id, channel_id, bot_name, spec, command_count, outcome, detail, created_at
		FROM builds ORDER BY created_at DESC, build_id LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent builds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.BuildRecord
	for rows.Next() {
		var rec domain.BuildRecord
		var detail sql.NullString
		var outcome string
		var createdAt int64

		if err := rows.Scan(
			&rec.BuildID, &rec.UserID, &rec.ChannelID, &rec.BotName, &rec.Spec,
			&rec.CommandCount, &outcome, &detail, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan build row: %w", err)
		}
		rec.Outcome = domain.BuildOutcome(outcome)
		rec.Detail = detail.String
		rec.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build rows: %w", err)
	}

	return records, nil
}

// CountBuildsByUser returns how many builds a user has recorded.
func (s *SQLiteStore) CountBuildsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM builds WHERE user_id = ?`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count builds for %s: %w", userID, err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

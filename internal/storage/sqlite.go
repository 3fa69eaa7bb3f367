// Package storage persists classifications the pipeline was not
// confident enough to apply, so they can be reviewed later.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledgermail/internal/model"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// UncertainClassification is a classification that fell below the
// acceptance threshold.
type UncertainClassification struct {
	RecordedAt time.Time
	Text       string
	Category   string
	Origin     model.Origin
	Confidence float64
}

// SQLiteStorage records uncertain classifications in a local SQLite
// database.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage opens (or creates) the database at dbPath and
// applies the schema.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("dbPath cannot be empty")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't benefit from multiple connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, dbPath: dbPath}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS uncertain_classifications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		text TEXT NOT NULL,
		category TEXT NOT NULL,
		origin TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_uncertain_recorded_at
		ON uncertain_classifications(recorded_at)`)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// RecordUncertain stores a below-threshold classification for review.
func (s *SQLiteStorage) RecordUncertain(ctx context.Context, text string, result model.ClassificationResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uncertain_classifications (text, category, origin, confidence)
		 VALUES (?, ?, ?, ?)`,
		text, result.Category, string(result.Origin), result.Confidence)
	if err != nil {
		return fmt.Errorf("failed to record uncertain classification: %w", err)
	}
	return nil
}

// ListUncertain returns the most recent uncertain classifications,
// newest first. A limit of 0 returns everything.
func (s *SQLiteStorage) ListUncertain(ctx context.Context, limit int) ([]UncertainClassification, error) {
	query := `SELECT recorded_at, text, category, origin, confidence
		FROM uncertain_classifications
		ORDER BY recorded_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uncertain classifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []UncertainClassification
	for rows.Next() {
		var u UncertainClassification
		var origin string
		if err := rows.Scan(&u.RecordedAt, &u.Text, &u.Category, &origin, &u.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		u.Origin = model.Origin(origin)
		results = append(results, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return results, nil
}

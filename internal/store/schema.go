package store

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(80) UNIQUE NOT NULL,
		email VARCHAR(120) UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS arguments (
		id UUID PRIMARY KEY,
		title VARCHAR(200) NOT NULL,
		content TEXT NOT NULL,
		category VARCHAR(100),
		author_id UUID NOT NULL REFERENCES users(id),
		verification_status VARCHAR(50) NOT NULL DEFAULT 'pending',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		fact_check_result JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rebuttals (
		id UUID PRIMARY KEY,
		argument_id UUID NOT NULL REFERENCES arguments(id) ON DELETE CASCADE,
		author_id UUID NOT NULL REFERENCES users(id),
		content TEXT NOT NULL,
		verification_status VARCHAR(50) NOT NULL DEFAULT 'pending',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		fact_check_result JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sources (
		id UUID PRIMARY KEY,
		submission_kind VARCHAR(20) NOT NULL,
		submission_id UUID NOT NULL,
		position INTEGER NOT NULL,
		url VARCHAR(500) NOT NULL,
		title VARCHAR(200) NOT NULL,
		description TEXT NOT NULL,
		is_valid BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_arguments_status ON arguments (verification_status)`,
	`CREATE INDEX IF NOT EXISTS idx_arguments_category ON arguments (category)`,
	`CREATE INDEX IF NOT EXISTS idx_rebuttals_argument ON rebuttals (argument_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sources_submission ON sources (submission_kind, submission_id)`,
}

// InitSchema creates the tables on startup when they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

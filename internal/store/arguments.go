package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

func (s *Store) CreateArgument(ctx context.Context, a *model.Argument) error {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	if a.Status == "" {
		a.Status = model.StatusPending
	}
	a.IsVerified = a.Status == model.StatusApproved

	verdictJSON, err := marshalVerdict(a.Verdict)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO arguments (
			id, title, content, category, author_id,
			verification_status, is_verified, fact_check_result,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.ExecContext(ctx, query,
		a.ID, a.Title, a.Content, nullable(a.Category), a.AuthorID,
		string(a.Status), a.IsVerified, verdictJSON,
		a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert argument: %w", err)
	}

	if err := insertSources(ctx, tx, model.KindArgument, a.ID, a.Sources); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetArgument(ctx context.Context, id string) (*model.Argument, error) {
	var (
		a           model.Argument
		category    sql.NullString
		status      string
		verdictJSON []byte
	)

	query := `
		SELECT id, title, content, category, author_id,
		       verification_status, is_verified, fact_check_result,
		       created_at, updated_at
		FROM arguments
		WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.Title, &a.Content, &category, &a.AuthorID,
		&status, &a.IsVerified, &verdictJSON,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("argument %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query argument: %w", err)
	}

	a.Category = category.String
	a.Status = model.Status(status)
	if a.Verdict, err = unmarshalVerdict(verdictJSON); err != nil {
		return nil, err
	}

	if a.Sources, err = s.listSources(ctx, model.KindArgument, a.ID); err != nil {
		return nil, err
	}
	if a.Rebuttals, err = s.listRebuttals(ctx, a.ID); err != nil {
		return nil, err
	}

	return &a, nil
}

// ListArguments returns arguments filtered by status and, optionally,
// category, newest first. Sources and rebuttals are not expanded.
func (s *Store) ListArguments(ctx context.Context, status model.Status, category string) ([]model.Argument, error) {
	query := `
		SELECT id, title, content, category, author_id,
		       verification_status, is_verified, fact_check_result,
		       created_at, updated_at
		FROM arguments
		WHERE verification_status = $1
	`
	args := []interface{}{string(status)}
	if category != "" {
		query += ` AND category = $2`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list arguments: %w", err)
	}
	defer rows.Close()

	var out []model.Argument
	for rows.Next() {
		var (
			a           model.Argument
			cat         sql.NullString
			st          string
			verdictJSON []byte
		)
		if err := rows.Scan(
			&a.ID, &a.Title, &a.Content, &cat, &a.AuthorID,
			&st, &a.IsVerified, &verdictJSON,
			&a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan argument: %w", err)
		}
		a.Category = cat.String
		a.Status = model.Status(st)
		if a.Verdict, err = unmarshalVerdict(verdictJSON); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func insertSources(ctx context.Context, tx *sql.Tx, kind model.Kind, submissionID string, sources []model.Source) error {
	query := `
		INSERT INTO sources (id, submission_kind, submission_id, position, url, title, description, is_valid)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for i := range sources {
		sources[i].ID = uuid.New().String()
		_, err := tx.ExecContext(ctx, query,
			sources[i].ID, string(kind), submissionID, i,
			sources[i].URL, sources[i].Title, sources[i].Description, sources[i].IsValid,
		)
		if err != nil {
			return fmt.Errorf("insert source: %w", err)
		}
	}
	return nil
}

func (s *Store) listSources(ctx context.Context, kind model.Kind, submissionID string) ([]model.Source, error) {
	query := `
		SELECT id, url, title, description, is_valid
		FROM sources
		WHERE submission_kind = $1 AND submission_id = $2
		ORDER BY position
	`
	rows, err := s.db.QueryContext(ctx, query, string(kind), submissionID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var out []model.Source
	for rows.Next() {
		var src model.Source
		if err := rows.Scan(&src.ID, &src.URL, &src.Title, &src.Description, &src.IsValid); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func marshalVerdict(v *model.Verdict) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal verdict: %w", err)
	}
	return data, nil
}

func unmarshalVerdict(data []byte) (*model.Verdict, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v model.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("unmarshal verdict: %w", err)
	}
	return &v, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

func (s *Store) CreateRebuttal(ctx context.Context, r *model.Rebuttal) error {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now().UTC()
	r.UpdatedAt = r.CreatedAt
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	r.IsVerified = r.Status == model.StatusApproved

	verdictJSON, err := marshalVerdict(r.Verdict)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO rebuttals (
			id, argument_id, author_id, content,
			verification_status, is_verified, fact_check_result,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = tx.ExecContext(ctx, query,
		r.ID, r.ArgumentID, r.AuthorID, r.Content,
		string(r.Status), r.IsVerified, verdictJSON,
		r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert rebuttal: %w", err)
	}

	if err := insertSources(ctx, tx, model.KindRebuttal, r.ID, r.Sources); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) GetRebuttal(ctx context.Context, id string) (*model.Rebuttal, error) {
	var (
		r           model.Rebuttal
		status      string
		verdictJSON []byte
	)

	query := `
		SELECT id, argument_id, author_id, content,
		       verification_status, is_verified, fact_check_result,
		       created_at, updated_at
		FROM rebuttals
		WHERE id = $1
	`
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.ArgumentID, &r.AuthorID, &r.Content,
		&status, &r.IsVerified, &verdictJSON,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rebuttal %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query rebuttal: %w", err)
	}

	r.Status = model.Status(status)
	if r.Verdict, err = unmarshalVerdict(verdictJSON); err != nil {
		return nil, err
	}
	if r.Sources, err = s.listSources(ctx, model.KindRebuttal, r.ID); err != nil {
		return nil, err
	}

	return &r, nil
}

func (s *Store) listRebuttals(ctx context.Context, argumentID string) ([]model.Rebuttal, error) {
	query := `
		SELECT id, argument_id, author_id, content,
		       verification_status, is_verified, fact_check_result,
		       created_at, updated_at
		FROM rebuttals
		WHERE argument_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, argumentID)
	if err != nil {
		return nil, fmt.Errorf("list rebuttals: %w", err)
	}
	defer rows.Close()

	var out []model.Rebuttal
	for rows.Next() {
		var (
			r           model.Rebuttal
			status      string
			verdictJSON []byte
		)
		if err := rows.Scan(
			&r.ID, &r.ArgumentID, &r.AuthorID, &r.Content,
			&status, &r.IsVerified, &verdictJSON,
			&r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan rebuttal: %w", err)
		}
		r.Status = model.Status(status)
		if r.Verdict, err = unmarshalVerdict(verdictJSON); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

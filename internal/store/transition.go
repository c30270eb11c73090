package store

import (
	"context"
	"fmt"
	"time"

	"github.com/onlyfringe/onlyfringe/internal/model"
)

// CommitVerdict performs the single atomic lifecycle write: status and
// verdict together, only while the row is still pending. The conditional
// UPDATE is the serialization point; a lost race changes zero rows and
// is reported to the caller, never overwritten.
func (s *Store) CommitVerdict(ctx context.Context, kind model.Kind, id string, status model.Status, v *model.Verdict) (bool, error) {
	var table string
	switch kind {
	case model.KindArgument:
		table = "arguments"
	case model.KindRebuttal:
		table = "rebuttals"
	default:
		return false, fmt.Errorf("unknown submission kind %q", kind)
	}

	verdictJSON, err := marshalVerdict(v)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET verification_status = $2,
		    is_verified = $3,
		    fact_check_result = $4,
		    updated_at = $5
		WHERE id = $1 AND verification_status = 'pending'
	`, table)

	res, err := s.db.ExecContext(ctx, query,
		id, string(status), status == model.StatusApproved, verdictJSON, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("update %s status: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}

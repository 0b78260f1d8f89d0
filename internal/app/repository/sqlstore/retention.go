package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"scribed/internal/app/model"
)

// Retention sweep primitives for the job store. Each method is one batch in
// one transaction: a failure rolls the whole batch back, but never the
// batches committed before it.

// HideOlderThan hides every visible job of the user created before cutoff,
// tagging it with the retention-policy reason. Returns the number of rows
// hidden.
func (s *JobStore) HideOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error) {
	var hidden int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := fmt.Sprintf(
			`UPDATE transcription_jobs
			 SET hidden = %s, hidden_date = %s, hidden_reason = %s
			 WHERE user_id = %s AND hidden = %s AND created_at < %s`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
		)
		res, err := tx.ExecContext(ctx, query,
			true, s.now(), string(model.HiddenReasonRetentionPolicy),
			userID, false, cutoff,
		)
		if err != nil {
			return fmt.Errorf("hide aged jobs: %w", err)
		}
		hidden, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("hide aged jobs: %w", err)
		}
		return nil
	})
	return hidden, err
}

// HideExcess hides the oldest visible jobs beyond keep, oldest first.
func (s *JobStore) HideExcess(ctx context.Context, userID int64, keep int64) (int64, error) {
	var hidden int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var visible int64
		countQuery := fmt.Sprintf(
			`SELECT COUNT(*) FROM transcription_jobs WHERE user_id = %s AND hidden = %s`,
			s.ph(1), s.ph(2),
		)
		if err := tx.QueryRowContext(ctx, countQuery, userID, false).Scan(&visible); err != nil {
			return fmt.Errorf("count visible jobs: %w", err)
		}
		excess := visible - keep
		if excess <= 0 {
			return nil
		}

		query := fmt.Sprintf(
			`UPDATE transcription_jobs
			 SET hidden = %s, hidden_date = %s, hidden_reason = %s
			 WHERE id IN (
				SELECT id FROM transcription_jobs
				WHERE user_id = %s AND hidden = %s
				ORDER BY created_at ASC
				LIMIT %s
			 )`,
			s.ph(1), s.ph(2), s.ph(3), s.ph(4), s.ph(5), s.ph(6),
		)
		res, err := tx.ExecContext(ctx, query,
			true, s.now(), string(model.HiddenReasonRetentionPolicy),
			userID, false, excess,
		)
		if err != nil {
			return fmt.Errorf("hide excess jobs: %w", err)
		}
		hidden, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("hide excess jobs: %w", err)
		}
		return nil
	})
	return hidden, err
}

// PurgeHiddenBefore physically deletes every job hidden before cutoff,
// whatever the hide reason. Linked operations survive with their job
// reference nullified; progress lines go with the job.
func (s *JobStore) PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var purged int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		doomed := fmt.Sprintf(
			`SELECT id FROM transcription_jobs WHERE hidden = %s AND hidden_date < %s`,
			s.ph(1), s.ph(2),
		)

		nullify := fmt.Sprintf(
			`UPDATE llm_operations SET job_id = NULL WHERE job_id IN (%s)`, doomed,
		)
		if _, err := tx.ExecContext(ctx, nullify, true, cutoff); err != nil {
			return fmt.Errorf("detach operations: %w", err)
		}

		dropProgress := fmt.Sprintf(
			`DELETE FROM job_progress WHERE job_id IN (%s)`, doomed,
		)
		if _, err := tx.ExecContext(ctx, dropProgress, true, cutoff); err != nil {
			return fmt.Errorf("delete progress logs: %w", err)
		}

		del := fmt.Sprintf(
			`DELETE FROM transcription_jobs WHERE hidden = %s AND hidden_date < %s`,
			s.ph(1), s.ph(2),
		)
		res, err := tx.ExecContext(ctx, del, true, cutoff)
		if err != nil {
			return fmt.Errorf("delete jobs: %w", err)
		}
		purged, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete jobs: %w", err)
		}
		return nil
	})
	return purged, err
}

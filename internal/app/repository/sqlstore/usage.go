package sqlstore

import (
	"context"
	"fmt"
	"time"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

const dateLayout = "2006-01-02"

// UsageStore implements repository.UsageDAO over Store.
//
// Increments are single INSERT ... ON CONFLICT DO UPDATE statements, never a
// read followed by a write: two jobs finishing simultaneously for the same
// user must both land in the day's row.
type UsageStore struct {
	*Store
}

// NewUsageStore wraps the shared store.
func NewUsageStore(s *Store) *UsageStore {
	return &UsageStore{Store: s}
}

var _ repository.UsageDAO = (*UsageStore)(nil)

// RecordTranscriptionUsage adds cost and minutes to today's row for the
// user, creating the row on first use.
func (s *UsageStore) RecordTranscriptionUsage(ctx context.Context, userID int64, cost, minutes float64) error {
	query := fmt.Sprintf(
		`INSERT INTO usage_ledger (user_id, usage_date, cost, minutes, workflows)
		 VALUES (%s, %s, %s, %s, 0)
		 ON CONFLICT (user_id, usage_date) DO UPDATE SET
			cost = usage_ledger.cost + excluded.cost,
			minutes = usage_ledger.minutes + excluded.minutes`,
		s.ph(1), s.ph(2), s.ph(3), s.ph(4),
	)
	if _, err := s.db.ExecContext(ctx, query,
		userID, s.now().Format(dateLayout), cost, minutes,
	); err != nil {
		return fmt.Errorf("record transcription usage: %w", err)
	}
	return nil
}

// RecordWorkflowUsage increments today's workflow counter for the user.
func (s *UsageStore) RecordWorkflowUsage(ctx context.Context, userID int64) error {
	query := fmt.Sprintf(
		`INSERT INTO usage_ledger (user_id, usage_date, cost, minutes, workflows)
		 VALUES (%s, %s, 0, 0, 1)
		 ON CONFLICT (user_id, usage_date) DO UPDATE SET
			workflows = usage_ledger.workflows + 1`,
		s.ph(1), s.ph(2),
	)
	if _, err := s.db.ExecContext(ctx, query, userID, s.now().Format(dateLayout)); err != nil {
		return fmt.Errorf("record workflow usage: %w", err)
	}
	return nil
}

// GetUsage sums the user's ledger rows for dates in [from, to].
func (s *UsageStore) GetUsage(ctx context.Context, userID int64, from, to time.Time) (model.UsageTotals, error) {
	var totals model.UsageTotals
	query := fmt.Sprintf(
		`SELECT COALESCE(SUM(cost), 0), COALESCE(SUM(minutes), 0), COALESCE(SUM(workflows), 0)
		 FROM usage_ledger
		 WHERE user_id = %s AND usage_date >= %s AND usage_date <= %s`,
		s.ph(1), s.ph(2), s.ph(3),
	)
	err := s.db.QueryRowContext(ctx, query,
		userID, from.Format(dateLayout), to.Format(dateLayout),
	).Scan(&totals.Cost, &totals.Minutes, &totals.Workflows)
	if err != nil {
		return model.UsageTotals{}, fmt.Errorf("query usage totals: %w", err)
	}
	return totals, nil
}

package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scribed/internal/app/repository"
)

// TestUsageStore_Interface verifies UsageStore implements repository.UsageDAO
func TestUsageStore_Interface(t *testing.T) {
	var _ repository.UsageDAO = (*UsageStore)(nil)
}

func TestUsageStore_RecordTranscriptionUsage(t *testing.T) {
	store, mock := newTestStore(t, "postgres")
	usage := NewUsageStore(store)

	// One statement: insert the day's row or add onto it.
	mock.ExpectExec("INSERT INTO usage_ledger (.+) ON CONFLICT").
		WithArgs(int64(7), "2025-03-12", 0.42, 12.5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := usage.RecordTranscriptionUsage(context.Background(), 7, 0.42, 12.5)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUsageStore_RecordWorkflowUsage(t *testing.T) {
	store, mock := newTestStore(t, "sqlite3")
	usage := NewUsageStore(store)

	mock.ExpectExec("INSERT INTO usage_ledger (.+) ON CONFLICT").
		WithArgs(int64(7), "2025-03-12").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := usage.RecordWorkflowUsage(context.Background(), 7)
	assert.NoError(t, err)
}

func TestUsageStore_GetUsage(t *testing.T) {
	store, mock := newTestStore(t, "postgres")
	usage := NewUsageStore(store)

	from := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(7), "2025-03-10", "2025-03-12").
		WillReturnRows(sqlmock.NewRows([]string{"cost", "minutes", "workflows"}).
			AddRow(1.5, 60.0, int64(3)))

	totals, err := usage.GetUsage(context.Background(), 7, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1.5, totals.Cost)
	assert.Equal(t, 60.0, totals.Minutes)
	assert.Equal(t, int64(3), totals.Workflows)
}

func TestUsageStore_GetUsage_EmptyRangeIsZero(t *testing.T) {
	store, mock := newTestStore(t, "sqlite3")
	usage := NewUsageStore(store)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"cost", "minutes", "workflows"}).
			AddRow(0.0, 0.0, int64(0)))

	totals, err := usage.GetUsage(context.Background(), 7, testClock, testClock)
	require.NoError(t, err)
	assert.Zero(t, totals.Cost)
	assert.Zero(t, totals.Workflows)
}

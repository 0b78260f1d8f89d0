package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobStore_HideOlderThan(t *testing.T) {
	store, mock := newTestStore(t, "postgres")
	jobs := NewJobStore(store)

	cutoff := testClock.AddDate(0, 0, -30)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transcription_jobs").
		WithArgs(true, testClock, "RETENTION_POLICY", int64(7), false, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectCommit()

	hidden, err := jobs.HideOlderThan(context.Background(), 7, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(4), hidden)
}

func TestJobStore_HideExcess(t *testing.T) {
	t.Run("hides_oldest_overflow", func(t *testing.T) {
		store, mock := newTestStore(t, "postgres")
		jobs := NewJobStore(store)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(int64(7), false).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(53)))
		mock.ExpectExec("UPDATE transcription_jobs").
			WithArgs(true, testClock, "RETENTION_POLICY", int64(7), false, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		hidden, err := jobs.HideExcess(context.Background(), 7, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(3), hidden)
	})

	t.Run("under_cap_is_noop", func(t *testing.T) {
		store, mock := newTestStore(t, "postgres")
		jobs := NewJobStore(store)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT COUNT").
			WithArgs(int64(7), false).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(12)))
		mock.ExpectCommit()

		hidden, err := jobs.HideExcess(context.Background(), 7, 50)
		require.NoError(t, err)
		assert.Zero(t, hidden)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestJobStore_PurgeHiddenBefore(t *testing.T) {
	store, mock := newTestStore(t, "postgres")
	jobs := NewJobStore(store)

	cutoff := testClock.AddDate(0, 0, -14)

	// Operations are detached, progress lines dropped, then the jobs
	// themselves, all in one transaction.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE llm_operations SET job_id = NULL").
		WithArgs(true, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM job_progress").
		WithArgs(true, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 6))
	mock.ExpectExec("DELETE FROM transcription_jobs").
		WithArgs(true, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	purged, err := jobs.PurgeHiddenBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobStore_PurgeHiddenBefore_RollsBackOnFailure(t *testing.T) {
	store, mock := newTestStore(t, "postgres")
	jobs := NewJobStore(store)

	cutoff := time.Date(2025, time.February, 26, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE llm_operations SET job_id = NULL").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM job_progress").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := jobs.PurgeHiddenBefore(context.Background(), cutoff)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

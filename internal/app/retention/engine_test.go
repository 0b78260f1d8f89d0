package retention

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scribed/internal/app/repository"
	"scribed/internal/app/testutil"
)

func newTestEngine(jobs *testutil.MockJobDAO, roles *testutil.MockRoleLimitDAO, grace time.Duration) *Engine {
	e := New(jobs, roles, grace, zap.NewNop())
	e.now = func() time.Time { return testutil.FixtureTime }
	return e
}

func TestEngine_SweepUser(t *testing.T) {
	t.Run("age_runs_before_count", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		e := newTestEngine(jobs, roles, 14*24*time.Hour)

		cutoff := testutil.FixtureTime.AddDate(0, 0, -30)

		var order []string
		jobs.On("HideOlderThan", mock.Anything, int64(7), cutoff).
			Run(func(mock.Arguments) { order = append(order, "age") }).
			Return(int64(4), nil)
		jobs.On("HideExcess", mock.Anything, int64(7), int64(50)).
			Run(func(mock.Arguments) { order = append(order, "count") }).
			Return(int64(2), nil)

		aged, excess, err := e.SweepUser(context.Background(), repository.UserRetentionPolicy{
			UserID: 7, MaxHistoryItems: 50, HistoryRetentionDays: 30,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4), aged)
		assert.Equal(t, int64(2), excess)
		assert.Equal(t, []string{"age", "count"}, order)
	})

	t.Run("zero_limits_disable_phases", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		e := newTestEngine(jobs, roles, 14*24*time.Hour)

		aged, excess, err := e.SweepUser(context.Background(), repository.UserRetentionPolicy{
			UserID: 7,
		})
		require.NoError(t, err)
		assert.Zero(t, aged)
		assert.Zero(t, excess)
		jobs.AssertNotCalled(t, "HideOlderThan", mock.Anything, mock.Anything, mock.Anything)
		jobs.AssertNotCalled(t, "HideExcess", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("age_failure_skips_count_phase", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		e := newTestEngine(jobs, roles, 14*24*time.Hour)

		jobs.On("HideOlderThan", mock.Anything, int64(7), mock.Anything).
			Return(int64(0), assert.AnError)

		_, _, err := e.SweepUser(context.Background(), repository.UserRetentionPolicy{
			UserID: 7, MaxHistoryItems: 50, HistoryRetentionDays: 30,
		})
		assert.Error(t, err)
		jobs.AssertNotCalled(t, "HideExcess", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestEngine_Sweep(t *testing.T) {
	t.Run("per_user_failure_does_not_stop_purge", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		grace := 14 * 24 * time.Hour
		e := newTestEngine(jobs, roles, grace)

		roles.On("ListRetentionPolicies", mock.Anything).Return([]repository.UserRetentionPolicy{
			{UserID: 7, HistoryRetentionDays: 30},
			{UserID: 8, HistoryRetentionDays: 30},
		}, nil)
		jobs.On("HideOlderThan", mock.Anything, int64(7), mock.Anything).
			Return(int64(0), assert.AnError)
		jobs.On("HideOlderThan", mock.Anything, int64(8), mock.Anything).
			Return(int64(3), nil)
		jobs.On("PurgeHiddenBefore", mock.Anything, testutil.FixtureTime.Add(-grace)).
			Return(int64(5), nil)

		sum, err := e.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sum.UsersSwept)
		assert.Equal(t, 1, sum.UserErrors)
		assert.Equal(t, int64(3), sum.AgedHidden)
		assert.Equal(t, int64(5), sum.Purged)
		jobs.AssertExpectations(t)
	})

	t.Run("policy_listing_failure_aborts", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		e := newTestEngine(jobs, roles, time.Hour)

		roles.On("ListRetentionPolicies", mock.Anything).
			Return(nil, assert.AnError)

		_, err := e.Sweep(context.Background())
		assert.Error(t, err)
		jobs.AssertNotCalled(t, "PurgeHiddenBefore", mock.Anything, mock.Anything)
	})

	t.Run("purge_failure_is_returned_with_partial_summary", func(t *testing.T) {
		jobs := testutil.NewMockJobDAO()
		roles := testutil.NewMockRoleLimitDAO()
		e := newTestEngine(jobs, roles, time.Hour)

		roles.On("ListRetentionPolicies", mock.Anything).
			Return([]repository.UserRetentionPolicy{{UserID: 7, MaxHistoryItems: 10}}, nil)
		jobs.On("HideExcess", mock.Anything, int64(7), int64(10)).
			Return(int64(1), nil)
		jobs.On("PurgeHiddenBefore", mock.Anything, mock.Anything).
			Return(int64(0), assert.AnError)

		sum, err := e.Sweep(context.Background())
		assert.Error(t, err)
		assert.Equal(t, int64(1), sum.CountHidden)
	})
}

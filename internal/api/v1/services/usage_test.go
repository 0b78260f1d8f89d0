package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
	"scribed/internal/app/quota"
	"scribed/internal/app/testutil"
)

func newUsageFixture() (*UsageServiceImpl, *testutil.MockUsageDAO, *testutil.MockRoleLimitDAO) {
	usage := testutil.NewMockUsageDAO()
	limits := testutil.NewMockRoleLimitDAO()
	svc := NewUsageService(quota.NewEvaluator(usage, limits), nil)
	return svc, usage, limits
}

func TestUsageService_Window(t *testing.T) {
	svc, usage, _ := newUsageFixture()
	usage.On("GetUsage", mock.Anything, int64(7), mock.Anything, mock.Anything).
		Return(model.UsageTotals{Cost: 2.5, Minutes: 30, Workflows: 1}, nil)

	resp, err := svc.Window(context.Background(), 7, model.WindowDaily)
	require.NoError(t, err)
	assert.Equal(t, "daily", resp.Window)
	assert.Equal(t, 2.5, resp.Cost)
	assert.Equal(t, int64(1), resp.Workflows)
}

func TestUsageService_Summary_CoversAllWindows(t *testing.T) {
	svc, usage, _ := newUsageFixture()
	usage.On("GetUsage", mock.Anything, int64(7), mock.Anything, mock.Anything).
		Return(model.UsageTotals{Cost: 1.0}, nil).Times(3)

	resp, err := svc.Summary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "daily", resp.Daily.Window)
	assert.Equal(t, "weekly", resp.Weekly.Window)
	assert.Equal(t, "monthly", resp.Monthly.Window)
	usage.AssertExpectations(t)
}

func TestUsageService_CheckQuota(t *testing.T) {
	t.Run("transcription_allowed", func(t *testing.T) {
		svc, _, limits := newUsageFixture()
		limits.On("LimitsForUser", mock.Anything, int64(7)).Return(testutil.UnlimitedRole(), nil)

		resp, err := svc.CheckQuota(context.Background(), 7, &dto.QuotaQuery{
			EstimatedCost: 0.5, Minutes: 10,
		})
		require.NoError(t, err)
		assert.True(t, resp.Allowed)
	})

	t.Run("workflow_denied_with_reason", func(t *testing.T) {
		svc, usage, limits := newUsageFixture()
		role := testutil.UnlimitedRole()
		role.DailyWorkflows = 1
		limits.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil)
		usage.On("GetUsage", mock.Anything, int64(7), mock.Anything, mock.Anything).
			Return(model.UsageTotals{Workflows: 1}, nil)

		resp, err := svc.CheckQuota(context.Background(), 7, &dto.QuotaQuery{Workflow: true})
		require.NoError(t, err)
		assert.False(t, resp.Allowed)
		assert.NotEmpty(t, resp.Reason)
		assert.Equal(t, "daily", resp.Window)
	})
}

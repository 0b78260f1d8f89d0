package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// MockUsageDAO is a testify mock of repository.UsageDAO.
type MockUsageDAO struct {
	mock.Mock
}

var _ repository.UsageDAO = (*MockUsageDAO)(nil)

func NewMockUsageDAO() *MockUsageDAO {
	return &MockUsageDAO{}
}

func (m *MockUsageDAO) RecordTranscriptionUsage(ctx context.Context, userID int64, cost, minutes float64) error {
	args := m.Called(ctx, userID, cost, minutes)
	return args.Error(0)
}

func (m *MockUsageDAO) RecordWorkflowUsage(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUsageDAO) GetUsage(ctx context.Context, userID int64, from, to time.Time) (model.UsageTotals, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Get(0).(model.UsageTotals), args.Error(1)
}

// MockRoleLimitDAO is a testify mock of repository.RoleLimitDAO.
type MockRoleLimitDAO struct {
	mock.Mock
}

var _ repository.RoleLimitDAO = (*MockRoleLimitDAO)(nil)

func NewMockRoleLimitDAO() *MockRoleLimitDAO {
	return &MockRoleLimitDAO{}
}

func (m *MockRoleLimitDAO) LimitsForRole(ctx context.Context, roleID int64) (*model.RoleLimits, error) {
	args := m.Called(ctx, roleID)
	limits, _ := args.Get(0).(*model.RoleLimits)
	return limits, args.Error(1)
}

func (m *MockRoleLimitDAO) LimitsForUser(ctx context.Context, userID int64) (*model.RoleLimits, error) {
	args := m.Called(ctx, userID)
	limits, _ := args.Get(0).(*model.RoleLimits)
	return limits, args.Error(1)
}

func (m *MockRoleLimitDAO) ListRetentionPolicies(ctx context.Context) ([]repository.UserRetentionPolicy, error) {
	args := m.Called(ctx)
	policies, _ := args.Get(0).([]repository.UserRetentionPolicy)
	return policies, args.Error(1)
}

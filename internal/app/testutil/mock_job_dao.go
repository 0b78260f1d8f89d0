package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// MockJobDAO is a testify mock of repository.JobDAO.
type MockJobDAO struct {
	mock.Mock
}

var _ repository.JobDAO = (*MockJobDAO)(nil)

func NewMockJobDAO() *MockJobDAO {
	return &MockJobDAO{}
}

func (m *MockJobDAO) Create(ctx context.Context, p repository.CreateJobParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockJobDAO) Get(ctx context.Context, id string) (*model.Job, error) {
	args := m.Called(ctx, id)
	job, _ := args.Get(0).(*model.Job)
	return job, args.Error(1)
}

func (m *MockJobDAO) GetForUser(ctx context.Context, id string, userID int64) (*model.Job, error) {
	args := m.Called(ctx, id, userID)
	job, _ := args.Get(0).(*model.Job)
	return job, args.Error(1)
}

func (m *MockJobDAO) ListVisible(ctx context.Context, userID int64, page, limit int) ([]model.Job, int64, error) {
	args := m.Called(ctx, userID, page, limit)
	jobs, _ := args.Get(0).([]model.Job)
	return jobs, args.Get(1).(int64), args.Error(2)
}

func (m *MockJobDAO) AppendProgress(ctx context.Context, id, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockJobDAO) TransitionStatus(ctx context.Context, id string, status model.JobStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockJobDAO) FinalizeSuccess(ctx context.Context, id, transcriptionText, detectedLanguage string) error {
	args := m.Called(ctx, id, transcriptionText, detectedLanguage)
	return args.Error(0)
}

func (m *MockJobDAO) SetError(ctx context.Context, id, message string) error {
	args := m.Called(ctx, id, message)
	return args.Error(0)
}

func (m *MockJobDAO) SetCost(ctx context.Context, id string, cost float64) error {
	args := m.Called(ctx, id, cost)
	return args.Error(0)
}

func (m *MockJobDAO) RequestCancel(ctx context.Context, id string, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobDAO) MarkCancelled(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobDAO) SetTitleStatus(ctx context.Context, id string, status model.TitleStatus, generatedTitle *string) error {
	args := m.Called(ctx, id, status, generatedTitle)
	return args.Error(0)
}

func (m *MockJobDAO) AttachOperation(ctx context.Context, jobID string, op *model.Operation) error {
	args := m.Called(ctx, jobID, op)
	return args.Error(0)
}

func (m *MockJobDAO) SoftDelete(ctx context.Context, id string, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobDAO) Restore(ctx context.Context, id string, userID int64) (bool, error) {
	args := m.Called(ctx, id, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobDAO) HideOlderThan(ctx context.Context, userID int64, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, userID, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobDAO) HideExcess(ctx context.Context, userID int64, keep int64) (int64, error) {
	args := m.Called(ctx, userID, keep)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobDAO) PurgeHiddenBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobDAO) Close() error {
	args := m.Called()
	return args.Error(0)
}

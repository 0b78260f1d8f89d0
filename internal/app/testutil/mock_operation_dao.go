package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
)

// MockOperationDAO is a testify mock of repository.OperationDAO.
type MockOperationDAO struct {
	mock.Mock
}

var _ repository.OperationDAO = (*MockOperationDAO)(nil)

func NewMockOperationDAO() *MockOperationDAO {
	return &MockOperationDAO{}
}

func (m *MockOperationDAO) Create(ctx context.Context, p repository.CreateOperationParams) (int64, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOperationDAO) Get(ctx context.Context, id int64) (*model.Operation, error) {
	args := m.Called(ctx, id)
	op, _ := args.Get(0).(*model.Operation)
	return op, args.Error(1)
}

func (m *MockOperationDAO) GetForUser(ctx context.Context, id, userID int64) (*model.Operation, error) {
	args := m.Called(ctx, id, userID)
	op, _ := args.Get(0).(*model.Operation)
	return op, args.Error(1)
}

func (m *MockOperationDAO) Transition(ctx context.Context, id int64, status model.OperationStatus, result, errText *string) (bool, error) {
	args := m.Called(ctx, id, status, result, errText)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperationDAO) UpdateResult(ctx context.Context, id, userID int64, result string) (bool, error) {
	args := m.Called(ctx, id, userID, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockOperationDAO) SetCost(ctx context.Context, id int64, cost float64) (bool, error) {
	args := m.Called(ctx, id, cost)
	return args.Bool(0), args.Error(1)
}

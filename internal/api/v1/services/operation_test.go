package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"scribed/internal/api/errors"
	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
	"scribed/internal/app/quota"
	"scribed/internal/app/testutil"
)

type opFixture struct {
	ops    *testutil.MockOperationDAO
	jobs   *testutil.MockJobDAO
	usage  *testutil.MockUsageDAO
	limits *testutil.MockRoleLimitDAO
	svc    *OperationServiceImpl
}

func newOpFixture() *opFixture {
	f := &opFixture{
		ops:    testutil.NewMockOperationDAO(),
		jobs:   testutil.NewMockJobDAO(),
		usage:  testutil.NewMockUsageDAO(),
		limits: testutil.NewMockRoleLimitDAO(),
	}
	f.svc = NewOperationService(f.ops, f.jobs, f.usage, quota.NewEvaluator(f.usage, f.limits), nil)
	return f
}

func TestOperationService_Create(t *testing.T) {
	t.Run("workflow_books_ledger_at_creation", func(t *testing.T) {
		f := newOpFixture()
		f.limits.On("LimitsForUser", mock.Anything, int64(7)).Return(testutil.UnlimitedRole(), nil)
		f.ops.On("Create", mock.Anything, mock.Anything).Return(int64(42), nil)
		f.usage.On("RecordWorkflowUsage", mock.Anything, int64(7)).Return(nil)
		f.ops.On("Get", mock.Anything, int64(42)).Return(testutil.PendingOperation(42, 7), nil)

		resp, err := f.svc.Create(context.Background(), 7, &dto.CreateOperationRequest{
			Provider:      "openai/gpt-4o",
			OperationType: "workflow",
			InputText:     "summarize this transcript",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(42), resp.ID)
		f.usage.AssertExpectations(t)
	})

	t.Run("title_generation_is_quota_free", func(t *testing.T) {
		f := newOpFixture()
		op := testutil.PendingOperation(9, 7)
		op.OperationType = model.OperationTypeTitleGeneration
		f.ops.On("Create", mock.Anything, mock.Anything).Return(int64(9), nil)
		f.ops.On("Get", mock.Anything, int64(9)).Return(op, nil)

		_, err := f.svc.Create(context.Background(), 7, &dto.CreateOperationRequest{
			Provider:      "openai/gpt-4o",
			OperationType: "title_generation",
			InputText:     "generate a title",
		})
		require.NoError(t, err)
		f.limits.AssertNotCalled(t, "LimitsForUser", mock.Anything, mock.Anything)
		f.usage.AssertNotCalled(t, "RecordWorkflowUsage", mock.Anything, mock.Anything)
	})

	t.Run("workflow_quota_denial_is_forbidden", func(t *testing.T) {
		f := newOpFixture()
		role := testutil.UnlimitedRole()
		role.DailyWorkflows = 10
		f.limits.On("LimitsForUser", mock.Anything, int64(7)).Return(role, nil)
		f.usage.On("GetUsage", mock.Anything, int64(7), mock.Anything, mock.Anything).
			Return(model.UsageTotals{Workflows: 10}, nil)

		_, err := f.svc.Create(context.Background(), 7, &dto.CreateOperationRequest{
			Provider:      "openai/gpt-4o",
			OperationType: "workflow",
			InputText:     "x",
		})
		require.Error(t, err)
		assert.Equal(t, errors.KindForbidden, apiKind(t, err))
		f.ops.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestOperationService_Transition_MirrorsToJob(t *testing.T) {
	t.Run("title_generation_drives_title_machine", func(t *testing.T) {
		f := newOpFixture()
		jobID := "job-1"
		result := "Quarterly review call"
		op := testutil.PendingOperation(42, 7)
		op.JobID = &jobID
		op.OperationType = model.OperationTypeTitleGeneration
		op.Status = model.OperationStatusFinished
		op.Result = &result
		op.CompletedAt = &testutil.FixtureTime

		f.ops.On("Transition", mock.Anything, int64(42), model.OperationStatusFinished, &result, (*string)(nil)).
			Return(true, nil)
		f.ops.On("Get", mock.Anything, int64(42)).Return(op, nil)
		f.jobs.On("SetTitleStatus", mock.Anything, "job-1", model.TitleStatusSuccess, &result).
			Return(nil)

		resp, err := f.svc.Transition(context.Background(), 42, &dto.TransitionOperationRequest{
			Status: "finished",
			Result: &result,
		})
		require.NoError(t, err)
		assert.Equal(t, "finished", resp.Status)
		f.jobs.AssertExpectations(t)
	})

	t.Run("workflow_attaches_to_job", func(t *testing.T) {
		f := newOpFixture()
		jobID := "job-1"
		result := "a fine summary"
		op := testutil.PendingOperation(42, 7)
		op.JobID = &jobID
		op.Status = model.OperationStatusFinished
		op.Result = &result
		op.CompletedAt = &testutil.FixtureTime

		f.ops.On("Transition", mock.Anything, int64(42), model.OperationStatusFinished, &result, (*string)(nil)).
			Return(true, nil)
		f.ops.On("Get", mock.Anything, int64(42)).Return(op, nil)
		f.jobs.On("AttachOperation", mock.Anything, "job-1", op).Return(nil)

		_, err := f.svc.Transition(context.Background(), 42, &dto.TransitionOperationRequest{
			Status: "finished",
			Result: &result,
		})
		require.NoError(t, err)
		f.jobs.AssertExpectations(t)
	})

	t.Run("mirror_failure_is_not_fatal", func(t *testing.T) {
		f := newOpFixture()
		jobID := "job-1"
		op := testutil.PendingOperation(42, 7)
		op.JobID = &jobID
		op.Status = model.OperationStatusProcessing

		f.ops.On("Transition", mock.Anything, int64(42), model.OperationStatusProcessing, (*string)(nil), (*string)(nil)).
			Return(true, nil)
		f.ops.On("Get", mock.Anything, int64(42)).Return(op, nil)
		f.jobs.On("AttachOperation", mock.Anything, "job-1", op).Return(assert.AnError)

		_, err := f.svc.Transition(context.Background(), 42, &dto.TransitionOperationRequest{
			Status: "processing",
		})
		assert.NoError(t, err)
	})

	t.Run("unlinked_operation_touches_no_job", func(t *testing.T) {
		f := newOpFixture()
		op := testutil.PendingOperation(42, 7)
		op.Status = model.OperationStatusProcessing

		f.ops.On("Transition", mock.Anything, int64(42), model.OperationStatusProcessing, (*string)(nil), (*string)(nil)).
			Return(true, nil)
		f.ops.On("Get", mock.Anything, int64(42)).Return(op, nil)

		_, err := f.svc.Transition(context.Background(), 42, &dto.TransitionOperationRequest{
			Status: "processing",
		})
		require.NoError(t, err)
		f.jobs.AssertNotCalled(t, "AttachOperation", mock.Anything, mock.Anything, mock.Anything)
		f.jobs.AssertNotCalled(t, "SetTitleStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOperationService_UpdateResult(t *testing.T) {
	t.Run("updates_and_mirrors", func(t *testing.T) {
		f := newOpFixture()
		result := "edited summary"
		op := testutil.PendingOperation(42, 7)
		op.Status = model.OperationStatusFinished
		op.Result = &result
		op.CompletedAt = &testutil.FixtureTime

		f.ops.On("UpdateResult", mock.Anything, int64(42), int64(7), "edited summary").
			Return(true, nil)
		f.ops.On("GetForUser", mock.Anything, int64(42), int64(7)).Return(op, nil)

		resp, err := f.svc.UpdateResult(context.Background(), 42, 7, "edited summary")
		require.NoError(t, err)
		require.NotNil(t, resp.Result)
		assert.Equal(t, "edited summary", *resp.Result)
	})

	t.Run("wrong_owner_is_not_found", func(t *testing.T) {
		f := newOpFixture()
		f.ops.On("UpdateResult", mock.Anything, int64(42), int64(99), "x").
			Return(false, nil)

		_, err := f.svc.UpdateResult(context.Background(), 42, 99, "x")
		require.Error(t, err)
		assert.Equal(t, errors.KindNotFound, apiKind(t, err))
	})
}

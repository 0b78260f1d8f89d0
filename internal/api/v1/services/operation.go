package services

import (
	"context"
	stderrors "errors"
	"log/slog"

	"scribed/internal/api/errors"
	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
	"scribed/internal/app/quota"
	"scribed/internal/app/repository"
	"scribed/internal/app/repository/sqlstore"
	"scribed/internal/app/telemetry"
)

// OperationServiceImpl implements OperationService.
type OperationServiceImpl struct {
	ops    repository.OperationDAO
	jobs   repository.JobDAO
	usage  repository.UsageDAO
	quota  *quota.Evaluator
	logger *slog.Logger
}

// NewOperationService creates a new operation service.
func NewOperationService(
	ops repository.OperationDAO,
	jobs repository.JobDAO,
	usage repository.UsageDAO,
	evaluator *quota.Evaluator,
	logger *slog.Logger,
) *OperationServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &OperationServiceImpl{ops: ops, jobs: jobs, usage: usage, quota: evaluator, logger: logger}
}

var _ OperationService = (*OperationServiceImpl)(nil)

// Create authorizes and inserts a pending operation. Workflow invocations
// count against the workflow quota and are booked at creation; title
// generation is free.
func (s *OperationServiceImpl) Create(ctx context.Context, userID int64, req *dto.CreateOperationRequest) (*dto.OperationResponse, error) {
	opType := model.OperationType(req.OperationType)

	if opType == model.OperationTypeWorkflow {
		decision, err := s.quota.CheckWorkflow(ctx, userID)
		if err != nil {
			s.logger.Error("workflow quota check failed", "user_id", userID, "error", err)
			return nil, errors.NewInternalError("Failed to evaluate quota")
		}
		if !decision.Allowed {
			return nil, errors.NewForbiddenError(decision.Reason)
		}
	}

	id, err := s.ops.Create(ctx, repository.CreateOperationParams{
		UserID:        userID,
		Provider:      req.Provider,
		OperationType: opType,
		InputText:     req.InputText,
		JobID:         req.JobID,
		PromptID:      req.PromptID,
	})
	if stderrors.Is(err, sqlstore.ErrUnknownProvider) {
		return nil, errors.NewValidationError("Validation failed", map[string]string{
			"provider": "is not a configured provider",
		})
	}
	if err != nil {
		s.logger.Error("operation creation failed", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to create operation")
	}
	telemetry.OperationsCreated.Inc()

	if opType == model.OperationTypeWorkflow {
		if err := s.usage.RecordWorkflowUsage(ctx, userID); err != nil {
			s.logger.Error("workflow ledger increment failed", "user_id", userID, "error", err)
			return nil, errors.NewInternalError("Failed to record usage")
		}
		telemetry.LedgerIncrements.Inc()
	}

	op, err := s.ops.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load created operation")
	}
	s.mirrorToJob(ctx, op)
	return operationToResponse(op), nil
}

// Get fetches an operation; admin views skip the ownership check.
func (s *OperationServiceImpl) Get(ctx context.Context, id, userID int64, admin bool) (*dto.OperationResponse, error) {
	var op *model.Operation
	var err error
	if admin {
		op, err = s.ops.Get(ctx, id)
	} else {
		op, err = s.ops.GetForUser(ctx, id, userID)
	}
	if stderrors.Is(err, sqlstore.ErrOperationNotFound) {
		return nil, errors.NewNotFoundError("Operation")
	}
	if err != nil {
		s.logger.Error("operation lookup failed", "operation_id", id, "error", err)
		return nil, errors.NewInternalError("Failed to load operation")
	}
	return operationToResponse(op), nil
}

// Transition applies a worker status write, then mirrors the new state into
// the linked job. Transition failures surface to the caller; a silently
// stuck processing operation looks exactly like a hung worker.
func (s *OperationServiceImpl) Transition(ctx context.Context, id int64, req *dto.TransitionOperationRequest) (*dto.OperationResponse, error) {
	status := model.OperationStatus(req.Status)

	ok, err := s.ops.Transition(ctx, id, status, req.Result, req.Error)
	if err != nil {
		return nil, errors.NewInternalError("Failed to update operation status")
	}
	if !ok {
		return nil, errors.NewNotFoundError("Operation")
	}

	if req.Cost != nil {
		if _, err := s.ops.SetCost(ctx, id, *req.Cost); err != nil {
			s.logger.Error("set operation cost failed", "operation_id", id, "error", err)
		}
	}

	op, err := s.ops.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load operation")
	}
	s.mirrorToJob(ctx, op)
	return operationToResponse(op), nil
}

// UpdateResult is the ownership-checked, idempotent edit of a completed
// operation's result text.
func (s *OperationServiceImpl) UpdateResult(ctx context.Context, id, userID int64, result string) (*dto.OperationResponse, error) {
	ok, err := s.ops.UpdateResult(ctx, id, userID, result)
	if err != nil {
		s.logger.Error("result update failed", "operation_id", id, "error", err)
		return nil, errors.NewInternalError("Failed to update result")
	}
	if !ok {
		return nil, errors.NewNotFoundError("Operation")
	}

	op, err := s.ops.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, errors.NewInternalError("Failed to load operation")
	}
	s.mirrorToJob(ctx, op)
	return operationToResponse(op), nil
}

// mirrorToJob pushes the operation's state into the linked job row: title
// generation drives the title sub-machine, workflows update the denormalized
// llm_operation_* fields. Mirror failures are logged, not fatal; the
// operation row stays the source of truth.
func (s *OperationServiceImpl) mirrorToJob(ctx context.Context, op *model.Operation) {
	if op.JobID == nil {
		return
	}

	if op.OperationType == model.OperationTypeTitleGeneration {
		titleStatus := map[model.OperationStatus]model.TitleStatus{
			model.OperationStatusPending:    model.TitleStatusPending,
			model.OperationStatusProcessing: model.TitleStatusProcessing,
			model.OperationStatusFinished:   model.TitleStatusSuccess,
			model.OperationStatusError:      model.TitleStatusFailed,
		}[op.Status]
		if err := s.jobs.SetTitleStatus(ctx, *op.JobID, titleStatus, op.Result); err != nil {
			s.logger.Error("title status mirror failed",
				"job_id", *op.JobID, "operation_id", op.ID, "error", err)
		}
		return
	}

	if err := s.jobs.AttachOperation(ctx, *op.JobID, op); err != nil {
		s.logger.Error("operation mirror failed",
			"job_id", *op.JobID, "operation_id", op.ID, "error", err)
	}
}

func operationToResponse(o *model.Operation) *dto.OperationResponse {
	return &dto.OperationResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		JobID:         o.JobID,
		Provider:      o.Provider,
		OperationType: string(o.OperationType),
		InputText:     o.InputText,
		PromptID:      o.PromptID,
		Status:        string(o.Status),
		Result:        o.Result,
		Error:         o.Error,
		Cost:          o.Cost,
		CreatedAt:     o.CreatedAt,
		CompletedAt:   o.CompletedAt,
	}
}

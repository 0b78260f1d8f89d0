package services

import (
	"context"
	"log/slog"

	"scribed/internal/api/errors"
	"scribed/internal/api/v1/dto"
	"scribed/internal/app/model"
	"scribed/internal/app/quota"
)

// UsageServiceImpl implements UsageService over the quota evaluator.
type UsageServiceImpl struct {
	quota  *quota.Evaluator
	logger *slog.Logger
}

// NewUsageService creates a new usage service.
func NewUsageService(evaluator *quota.Evaluator, logger *slog.Logger) *UsageServiceImpl {
	if logger == nil {
		logger = slog.Default()
	}
	return &UsageServiceImpl{quota: evaluator, logger: logger}
}

var _ UsageService = (*UsageServiceImpl)(nil)

// Window returns one window's totals for the user.
func (s *UsageServiceImpl) Window(ctx context.Context, userID int64, window model.UsageWindow) (*dto.UsageResponse, error) {
	totals, err := s.quota.Usage(ctx, userID, window)
	if err != nil {
		s.logger.Error("usage read failed", "user_id", userID, "window", window, "error", err)
		return nil, errors.NewInternalError("Failed to read usage")
	}
	return &dto.UsageResponse{
		Window:    string(window),
		Cost:      totals.Cost,
		Minutes:   totals.Minutes,
		Workflows: totals.Workflows,
	}, nil
}

// Summary returns all three windows at once.
func (s *UsageServiceImpl) Summary(ctx context.Context, userID int64) (*dto.UsageSummaryResponse, error) {
	out := &dto.UsageSummaryResponse{}
	for _, w := range []struct {
		window model.UsageWindow
		target *dto.UsageResponse
	}{
		{model.WindowDaily, &out.Daily},
		{model.WindowWeekly, &out.Weekly},
		{model.WindowMonthly, &out.Monthly},
	} {
		resp, err := s.Window(ctx, userID, w.window)
		if err != nil {
			return nil, err
		}
		*w.target = *resp
	}
	return out, nil
}

// CheckQuota is the pre-flight authorization the HTTP layer runs before
// accepting an upload or a workflow.
func (s *UsageServiceImpl) CheckQuota(ctx context.Context, userID int64, q *dto.QuotaQuery) (*dto.QuotaDecisionResponse, error) {
	var decision quota.Decision
	var err error
	if q.Workflow {
		decision, err = s.quota.CheckWorkflow(ctx, userID)
	} else {
		decision, err = s.quota.CheckTranscription(ctx, userID, q.EstimatedCost, q.Minutes)
	}
	if err != nil {
		s.logger.Error("quota check failed", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to evaluate quota")
	}
	return &dto.QuotaDecisionResponse{
		Allowed: decision.Allowed,
		Reason:  decision.Reason,
		Window:  string(decision.Window),
	}, nil
}

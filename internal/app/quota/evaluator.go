package quota

import (
	"context"
	"fmt"
	"time"

	"scribed/internal/app/model"
	"scribed/internal/app/repository"
	"scribed/internal/app/telemetry"
)

// LimitSource resolves the role-limit snapshot for a user. Satisfied by the
// role-limit store directly or by the redis read-through cache around it.
type LimitSource interface {
	LimitsForUser(ctx context.Context, userID int64) (*model.RoleLimits, error)
}

// Evaluator authorizes new jobs and workflows against the usage ledger and
// the owning role's ceilings. Zero ceilings mean unlimited.
type Evaluator struct {
	usage  repository.UsageDAO
	limits LimitSource
	now    func() time.Time
}

// NewEvaluator builds an evaluator.
func NewEvaluator(usage repository.UsageDAO, limits LimitSource) *Evaluator {
	return &Evaluator{
		usage:  usage,
		limits: limits,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Decision is the outcome of a quota check. Reason is set when denied.
type Decision struct {
	Allowed bool              `json:"allowed"`
	Reason  string            `json:"reason,omitempty"`
	Window  model.UsageWindow `json:"window,omitempty"`
}

func deny(window model.UsageWindow, what string) Decision {
	telemetry.QuotaRejections.Inc()
	return Decision{
		Allowed: false,
		Reason:  fmt.Sprintf("%s %s quota exceeded", window, what),
		Window:  window,
	}
}

var windows = []model.UsageWindow{model.WindowDaily, model.WindowWeekly, model.WindowMonthly}

// CheckTranscription decides whether a new job with the given estimated cost
// and audio minutes would breach any window's cost or minute ceiling.
func (e *Evaluator) CheckTranscription(ctx context.Context, userID int64, estimatedCost, minutes float64) (Decision, error) {
	limits, err := e.limits.LimitsForUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve limits for user %d: %w", userID, err)
	}

	now := e.now()
	for _, w := range windows {
		costLimit, minuteLimit, _ := ceilings(limits, w)
		if costLimit == 0 && minuteLimit == 0 {
			continue
		}
		used, err := e.usage.GetUsage(ctx, userID, w.Start(now), now)
		if err != nil {
			return Decision{}, fmt.Errorf("read %s usage for user %d: %w", w, userID, err)
		}
		if costLimit > 0 && used.Cost+estimatedCost > costLimit {
			return deny(w, "cost"), nil
		}
		if minuteLimit > 0 && used.Minutes+minutes > minuteLimit {
			return deny(w, "minutes"), nil
		}
	}
	return Decision{Allowed: true}, nil
}

// CheckWorkflow decides whether one more workflow invocation would breach
// any window's workflow ceiling.
func (e *Evaluator) CheckWorkflow(ctx context.Context, userID int64) (Decision, error) {
	limits, err := e.limits.LimitsForUser(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("resolve limits for user %d: %w", userID, err)
	}

	now := e.now()
	for _, w := range windows {
		_, _, workflowLimit := ceilings(limits, w)
		if workflowLimit == 0 {
			continue
		}
		used, err := e.usage.GetUsage(ctx, userID, w.Start(now), now)
		if err != nil {
			return Decision{}, fmt.Errorf("read %s usage for user %d: %w", w, userID, err)
		}
		if used.Workflows+1 > workflowLimit {
			return deny(w, "workflow"), nil
		}
	}
	return Decision{Allowed: true}, nil
}

// Usage returns the user's totals for one window ending today.
func (e *Evaluator) Usage(ctx context.Context, userID int64, window model.UsageWindow) (model.UsageTotals, error) {
	if !model.ValidUsageWindow(window) {
		return model.UsageTotals{}, fmt.Errorf("invalid usage window %q", window)
	}
	now := e.now()
	return e.usage.GetUsage(ctx, userID, window.Start(now), now)
}

func ceilings(l *model.RoleLimits, w model.UsageWindow) (cost, minutes float64, workflows int64) {
	switch w {
	case model.WindowWeekly:
		return l.WeeklyCost, l.WeeklyMinutes, l.WeeklyWorkflows
	case model.WindowMonthly:
		return l.MonthlyCost, l.MonthlyMinutes, l.MonthlyWorkflows
	default:
		return l.DailyCost, l.DailyMinutes, l.DailyWorkflows
	}
}

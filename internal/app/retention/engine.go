package retention

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scribed/internal/app/repository"
	"scribed/internal/app/telemetry"
)

// Engine applies role-configured history limits. A sweep runs two
// per-user soft-delete phases, then one system-wide hard-delete pass:
//
//	phase 1: hide visible jobs older than the role's retention days
//	phase 2: hide the oldest visible jobs beyond the role's history size
//	phase 3: physically delete jobs hidden longer than the grace period
//
// Age runs before count so genuinely stale records are always purged ahead
// of young-but-excess ones. Every phase commits on its own; a later failure
// never rolls back an earlier phase.
type Engine struct {
	jobs     repository.JobDAO
	policies repository.RoleLimitDAO
	grace    time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// New builds an engine. grace is the system-wide hide-to-delete horizon; it
// is not per-user configurable.
func New(jobs repository.JobDAO, policies repository.RoleLimitDAO, grace time.Duration, logger *zap.Logger) *Engine {
	return &Engine{
		jobs:     jobs,
		policies: policies,
		grace:    grace,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Summary reports what one sweep did.
type Summary struct {
	UsersSwept  int   `json:"users_swept"`
	AgedHidden  int64 `json:"aged_hidden"`
	CountHidden int64 `json:"count_hidden"`
	Purged      int64 `json:"purged"`
	UserErrors  int   `json:"user_errors"`
}

// Sweep runs all three phases once. Per-user failures are logged and
// counted, not fatal; the hard-delete pass still runs. The returned error is
// only set when the sweep could not run at all.
func (e *Engine) Sweep(ctx context.Context) (Summary, error) {
	var sum Summary

	policies, err := e.policies.ListRetentionPolicies(ctx)
	if err != nil {
		return sum, err
	}

	for _, p := range policies {
		aged, excess, err := e.SweepUser(ctx, p)
		sum.AgedHidden += aged
		sum.CountHidden += excess
		if err != nil {
			sum.UserErrors++
			e.logger.Error("retention sweep failed for user",
				zap.Int64("user_id", p.UserID), zap.Error(err))
			continue
		}
		sum.UsersSwept++
	}

	purged, err := e.jobs.PurgeHiddenBefore(ctx, e.now().Add(-e.grace))
	sum.Purged = purged
	if err != nil {
		e.logger.Error("retention purge failed", zap.Error(err))
		return sum, err
	}
	telemetry.RetentionPurged.Add(float64(purged))

	e.logger.Info("retention sweep finished",
		zap.Int("users_swept", sum.UsersSwept),
		zap.Int64("aged_hidden", sum.AgedHidden),
		zap.Int64("count_hidden", sum.CountHidden),
		zap.Int64("purged", sum.Purged),
		zap.Int("user_errors", sum.UserErrors))
	return sum, nil
}

// SweepUser runs phases 1 and 2 for a single user. A zero limit disables the
// corresponding phase. Returns the rows hidden by each phase.
func (e *Engine) SweepUser(ctx context.Context, p repository.UserRetentionPolicy) (aged, excess int64, err error) {
	if p.HistoryRetentionDays > 0 {
		cutoff := e.now().AddDate(0, 0, -int(p.HistoryRetentionDays))
		aged, err = e.jobs.HideOlderThan(ctx, p.UserID, cutoff)
		if err != nil {
			return aged, 0, err
		}
		telemetry.RetentionHidden.Add(float64(aged))
	}

	if p.MaxHistoryItems > 0 {
		excess, err = e.jobs.HideExcess(ctx, p.UserID, p.MaxHistoryItems)
		if err != nil {
			return aged, excess, err
		}
		telemetry.RetentionHidden.Add(float64(excess))
	}

	return aged, excess, nil
}

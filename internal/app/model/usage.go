package model

import "time"

// UsageWindow selects the range a usage query sums over.
type UsageWindow string

const (
	WindowDaily   UsageWindow = "daily"
	WindowWeekly  UsageWindow = "weekly"
	WindowMonthly UsageWindow = "monthly"
)

// ValidUsageWindow reports whether w is a known window.
func ValidUsageWindow(w UsageWindow) bool {
	return w == WindowDaily || w == WindowWeekly || w == WindowMonthly
}

// Start returns the first day of the window containing now: the day itself,
// the Monday of the current week, or the first of the current month.
func (w UsageWindow) Start(now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch w {
	case WindowWeekly:
		offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
		return day.AddDate(0, 0, -offset)
	case WindowMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	default:
		return day
	}
}

// UsageTotals is the sum of ledger rows over a window. The underlying rows
// are additive accumulators and are never deleted; they double as the audit
// trail.
type UsageTotals struct {
	Cost      float64 `json:"cost"`
	Minutes   float64 `json:"minutes"`
	Workflows int64   `json:"workflows"`
}

// RoleLimits is the read-only snapshot of a role's ceilings. Zero means
// unlimited for every field.
type RoleLimits struct {
	RoleID int64 `json:"role_id"`

	DailyCost   float64 `json:"daily_cost"`
	WeeklyCost  float64 `json:"weekly_cost"`
	MonthlyCost float64 `json:"monthly_cost"`

	DailyMinutes   float64 `json:"daily_minutes"`
	WeeklyMinutes  float64 `json:"weekly_minutes"`
	MonthlyMinutes float64 `json:"monthly_minutes"`

	DailyWorkflows   int64 `json:"daily_workflows"`
	WeeklyWorkflows  int64 `json:"weekly_workflows"`
	MonthlyWorkflows int64 `json:"monthly_workflows"`

	MaxHistoryItems      int64 `json:"max_history_items"`
	HistoryRetentionDays int64 `json:"history_retention_days"`
}

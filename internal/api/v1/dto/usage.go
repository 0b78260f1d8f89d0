package dto

import (
	"scribed/internal/api/errors"
	"scribed/internal/app/model"
)

// UsageQuery selects the window for a usage read.
type UsageQuery struct {
	Window string `form:"window,default=daily"`
}

// Validate rejects unknown windows.
func (q *UsageQuery) Validate() error {
	if !model.ValidUsageWindow(model.UsageWindow(q.Window)) {
		return errors.NewValidationError("Validation failed", map[string]string{
			"window": "must be one of daily, weekly, monthly",
		})
	}
	return nil
}

// QuotaQuery carries the proposed job's footprint for a pre-flight check.
type QuotaQuery struct {
	EstimatedCost float64 `form:"estimated_cost"`
	Minutes       float64 `form:"minutes"`
	Workflow      bool    `form:"workflow"`
}

// UsageResponse is one window's totals.
type UsageResponse struct {
	Window    string  `json:"window"`
	Cost      float64 `json:"cost"`
	Minutes   float64 `json:"minutes"`
	Workflows int64   `json:"workflows"`
}

// UsageSummaryResponse carries all three windows at once.
type UsageSummaryResponse struct {
	Daily   UsageResponse `json:"daily"`
	Weekly  UsageResponse `json:"weekly"`
	Monthly UsageResponse `json:"monthly"`
}

// QuotaDecisionResponse is the outcome of a pre-flight quota check.
type QuotaDecisionResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Window  string `json:"window,omitempty"`
}

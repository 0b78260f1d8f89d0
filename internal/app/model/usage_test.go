package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageWindow_Start(t *testing.T) {
	// Wednesday 2025-03-12
	now := time.Date(2025, time.March, 12, 15, 45, 0, 0, time.UTC)

	tests := []struct {
		name   string
		window UsageWindow
		now    time.Time
		want   time.Time
	}{
		{
			name:   "daily_truncates_to_midnight",
			window: WindowDaily,
			now:    now,
			want:   time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly_starts_monday",
			window: WindowWeekly,
			now:    now,
			want:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly_on_monday_is_same_day",
			window: WindowWeekly,
			now:    time.Date(2025, time.March, 10, 1, 0, 0, 0, time.UTC),
			want:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly_on_sunday_reaches_back_six_days",
			window: WindowWeekly,
			now:    time.Date(2025, time.March, 16, 23, 0, 0, 0, time.UTC),
			want:   time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly_starts_on_the_first",
			window: WindowMonthly,
			now:    now,
			want:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly_on_the_first",
			window: WindowMonthly,
			now:    time.Date(2025, time.March, 1, 0, 30, 0, 0, time.UTC),
			want:   time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.window.Start(tt.now))
		})
	}
}

func TestValidUsageWindow(t *testing.T) {
	assert.True(t, ValidUsageWindow(WindowDaily))
	assert.True(t, ValidUsageWindow(WindowWeekly))
	assert.True(t, ValidUsageWindow(WindowMonthly))
	assert.False(t, ValidUsageWindow(UsageWindow("yearly")))
}

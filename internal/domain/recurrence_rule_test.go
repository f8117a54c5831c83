package domain

import (
	"testing"
	"time"
)

func TestRecurrenceRuleValidate(t *testing.T) {
	t.Parallel()

	day := 15
	count := 10
	end := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		rule RecurrenceRule
		want error
	}{
		{"valid daily", RecurrenceRule{Frequency: FrequencyDaily, Interval: 1}, nil},
		{"valid weekly with days", RecurrenceRule{Frequency: FrequencyWeekly, Interval: 2, DaysOfWeek: []int{0, 4}}, nil},
		{"valid monthly with day", RecurrenceRule{Frequency: FrequencyMonthly, Interval: 1, DayOfMonth: &day}, nil},
		{"valid yearly bounded", RecurrenceRule{Frequency: FrequencyYearly, Interval: 1, EndDate: &end, Count: &count}, nil},
		{"bad frequency", RecurrenceRule{Frequency: "hourly", Interval: 1}, ErrInvalidFrequency},
		{"zero interval", RecurrenceRule{Frequency: FrequencyDaily, Interval: 0}, ErrIntervalTooSmall},
		{"huge interval", RecurrenceRule{Frequency: FrequencyDaily, Interval: 366}, ErrIntervalTooLarge},
		{"weekday out of range", RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, DaysOfWeek: []int{7}}, ErrInvalidDayOfWeek},
		{"weekdays on daily rule", RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, DaysOfWeek: []int{1}}, ErrDaysOfWeekScope},
		{"day of month on weekly rule", RecurrenceRule{Frequency: FrequencyWeekly, Interval: 1, DayOfMonth: &day}, ErrDayOfMonthScope},
		{"zero count", RecurrenceRule{Frequency: FrequencyDaily, Interval: 1, Count: intPtr(0)}, ErrCountTooSmall},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if err := tc.rule.Validate(); err != tc.want {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func intPtr(i int) *int { return &i }

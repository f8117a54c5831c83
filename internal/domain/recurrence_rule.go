package domain

import (
	"errors"
	"time"
)

// Frequency represents how often a recurring task repeats.
type Frequency string

// Possible recurrence frequency values
const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Common validation errors for RecurrenceRule
var (
	ErrInvalidFrequency     = errors.New("invalid recurrence frequency")
	ErrIntervalTooSmall     = errors.New("recurrence interval must be at least 1")
	ErrIntervalTooLarge     = errors.New("recurrence interval cannot exceed 365")
	ErrInvalidDayOfWeek     = errors.New("days of week must be in range 0 (Monday) to 6 (Sunday)")
	ErrDaysOfWeekScope      = errors.New("days of week apply only to weekly rules")
	ErrInvalidDayOfMonth    = errors.New("day of month must be in range 1 to 31")
	ErrDayOfMonthScope      = errors.New("day of month applies only to monthly rules")
	ErrCountTooSmall        = errors.New("recurrence count must be at least 1")
)

// RecurrenceRule describes how a definition task repeats. Weekday indices
// follow the original data model: 0 is Monday and 6 is Sunday. EndDate is
// an exclusive bound; Count limits the number of generated instances.
// Both bounds are optional and independent, and expansion honors whichever
// is tighter.
type RecurrenceRule struct {
	Frequency  Frequency  `json:"frequency"`
	Interval   int        `json:"interval"`
	DaysOfWeek []int      `json:"days_of_week,omitempty"`
	DayOfMonth *int       `json:"day_of_month,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty"`
}

// Validate checks if the RecurrenceRule has valid data.
// Returns an error if any field fails validation.
func (r *RecurrenceRule) Validate() error {
	if !isValidFrequency(r.Frequency) {
		return ErrInvalidFrequency
	}

	if r.Interval < 1 {
		return ErrIntervalTooSmall
	}

	if r.Interval > 365 {
		return ErrIntervalTooLarge
	}

	if len(r.DaysOfWeek) > 0 {
		if r.Frequency != FrequencyWeekly {
			return ErrDaysOfWeekScope
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return ErrInvalidDayOfWeek
			}
		}
	}

	if r.DayOfMonth != nil {
		if r.Frequency != FrequencyMonthly {
			return ErrDayOfMonthScope
		}
		if *r.DayOfMonth < 1 || *r.DayOfMonth > 31 {
			return ErrInvalidDayOfMonth
		}
	}

	if r.Count != nil && *r.Count < 1 {
		return ErrCountTooSmall
	}

	return nil
}

// isValidFrequency checks if the given frequency is a valid Frequency.
func isValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	default:
		return false
	}
}

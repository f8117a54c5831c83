// Package recurrence expands a recurring task definition into concrete,
// detached future occurrences. Expansion is a pure computation: it performs
// no I/O, and persisting the generated instances is the caller's
// responsibility.
package recurrence

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// DefaultMaxInstances bounds expansion when the caller does not supply its
// own limit, guaranteeing termination for unbounded rules.
const DefaultMaxInstances = 52

// Common errors returned by Expand
var (
	ErrMissingRule             = errors.New("definition task has no recurrence rule")
	ErrMaxInstancesNotPositive = errors.New("max instances must be positive")
)

// Expand generates up to maxInstances occurrence tasks from a definition
// task carrying a recurrence rule. Each instance gets a fresh ID, references
// the definition through ParentTaskID, inherits title, priority, and
// reminder settings, preserves the definition's duration, and never carries
// the rule itself. The sequence stops early at the rule's EndDate
// (exclusive) or Count, whichever is tighter.
func Expand(definition *domain.Task, maxInstances int) ([]*domain.Task, error) {
	if definition.RecurrenceRule == nil {
		return nil, ErrMissingRule
	}
	if maxInstances <= 0 {
		return nil, ErrMaxInstancesNotPositive
	}

	rule := definition.RecurrenceRule
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	instances := make([]*domain.Task, 0, maxInstances)
	for i := 1; i <= maxInstances; i++ {
		if rule.Count != nil && i >= *rule.Count {
			break
		}

		nextStart := occurrence(definition.Start, rule, i)
		if rule.EndDate != nil && !nextStart.Before(*rule.EndDate) {
			break
		}

		instances = append(instances, instantiate(definition, nextStart))
	}

	return instances, nil
}

// instantiate builds one detached occurrence of the definition starting at
// nextStart.
func instantiate(definition *domain.Task, nextStart time.Time) *domain.Task {
	now := time.Now().UTC()
	parentID := definition.ID

	instance := &domain.Task{
		ID:             uuid.New(),
		UserID:         definition.UserID,
		Title:          definition.Title,
		Start:          nextStart,
		Priority:       definition.Priority,
		ParentTaskID:   &parentID,
		ReminderOffset: definition.ReminderOffset,
		IsImportant:    definition.IsImportant,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if definition.End != nil {
		end := nextStart.Add(definition.End.Sub(definition.Start))
		instance.End = &end
	}

	return instance
}

// occurrence computes the start time of the i-th occurrence (i >= 1) of a
// rule anchored at start.
func occurrence(start time.Time, rule *domain.RecurrenceRule, i int) time.Time {
	switch rule.Frequency {
	case domain.FrequencyDaily:
		return start.AddDate(0, 0, rule.Interval*i)

	case domain.FrequencyWeekly:
		if len(rule.DaysOfWeek) == 0 {
			return start.AddDate(0, 0, 7*rule.Interval*i)
		}
		// Anchor on the first listed weekday: the first occurrence lands on
		// the next such weekday strictly after start, later occurrences step
		// whole interval-weeks from that anchor.
		anchor := nextWeekday(start, rule.DaysOfWeek[0])
		return anchor.AddDate(0, 0, 7*rule.Interval*(i-1))

	case domain.FrequencyMonthly:
		day := start.Day()
		if rule.DayOfMonth != nil {
			day = *rule.DayOfMonth
		}
		return addMonthsClamped(start, rule.Interval*i, day)

	case domain.FrequencyYearly:
		year := start.Year() + rule.Interval*i
		day := clampDay(start.Day(), start.Month(), year)
		return time.Date(year, start.Month(), day,
			start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())

	default:
		// Unreachable: rule validation rejects unknown frequencies.
		return start
	}
}

// nextWeekday returns the first instant strictly after start whose weekday
// matches the given index (0 = Monday ... 6 = Sunday), preserving the
// time of day. If start already falls on that weekday, it advances a full
// week.
func nextWeekday(start time.Time, weekday int) time.Time {
	// time.Weekday counts from Sunday; the rule counts from Monday.
	current := (int(start.Weekday()) + 6) % 7
	days := (weekday - current + 7) % 7
	if days == 0 {
		days = 7
	}
	return start.AddDate(0, 0, days)
}

// addMonthsClamped adds months calendar months to start, pinning the
// result to day (clamped to the target month's length) rather than letting
// overflow roll into the following month.
func addMonthsClamped(start time.Time, months, day int) time.Time {
	total := int(start.Month()) - 1 + months
	year := start.Year() + total/12
	month := time.Month(total%12 + 1)
	return time.Date(year, month, clampDay(day, month, year),
		start.Hour(), start.Minute(), start.Second(), start.Nanosecond(), start.Location())
}

// clampDay limits day to the number of days in the given month and year.
func clampDay(day int, month time.Month, year int) int {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}

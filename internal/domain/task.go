package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Priority represents the urgency level of a task.
type Priority string

// Possible task priority values
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ReminderOffset represents how far before a task's start time a reminder
// should fire. "none" disables the reminder entirely.
type ReminderOffset string

// Possible reminder offset values
const (
	ReminderNone        ReminderOffset = "none"
	ReminderAtTime      ReminderOffset = "at_time"
	ReminderBefore5Min  ReminderOffset = "before_5min"
	ReminderBefore15Min ReminderOffset = "before_15min"
	ReminderBefore30Min ReminderOffset = "before_30min"
	ReminderBefore1Hour ReminderOffset = "before_1hour"
	ReminderBefore1Day  ReminderOffset = "before_1day"
)

// Common validation errors for Task
var (
	ErrTaskIDEmpty            = errors.New("task ID cannot be empty")
	ErrTaskUserIDEmpty        = errors.New("task user ID cannot be empty")
	ErrTaskTitleEmpty         = errors.New("task title cannot be empty")
	ErrTaskTitleTooLong       = errors.New("task title cannot exceed 200 characters")
	ErrTaskStartZero          = errors.New("task start time is required")
	ErrTaskEndBeforeStart     = errors.New("task end time cannot precede its start time")
	ErrInvalidPriority        = errors.New("invalid task priority")
	ErrInvalidReminderOffset  = errors.New("invalid reminder offset")
	ErrInstanceCarriesRule    = errors.New("generated instance cannot carry a recurrence rule")
	ErrRecurringRuleMissing   = errors.New("recurring task must carry a recurrence rule")
)

// Task represents a single calendar entry. A task owning a recurrence rule
// is a definition task; tasks generated from it reference the definition
// through ParentTaskID and never carry the rule themselves.
type Task struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Title          string          `json:"title"`
	Start          time.Time       `json:"start"`
	End            *time.Time      `json:"end,omitempty"`
	Priority       Priority        `json:"priority"`
	RecurrenceRule *RecurrenceRule `json:"recurrence_rule,omitempty"`
	IsRecurring    bool            `json:"is_recurring"`
	ParentTaskID   *uuid.UUID      `json:"parent_task_id,omitempty"`
	ReminderOffset ReminderOffset  `json:"reminder_offset"`
	IsImportant    bool            `json:"is_important"`
	ReminderSent   bool            `json:"reminder_sent"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// NewTask creates a new Task owned by the given user. It generates a fresh
// UUID, applies the medium priority and "none" reminder defaults, and sets
// the creation/update timestamps. Returns an error if validation fails.
func NewTask(userID uuid.UUID, title string, start time.Time, end *time.Time) (*Task, error) {
	now := time.Now().UTC()
	task := &Task{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          title,
		Start:          start,
		End:            end,
		Priority:       PriorityMedium,
		ReminderOffset: ReminderNone,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks if the Task has valid data.
// Returns an error if any field fails validation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return ErrTaskIDEmpty
	}

	if t.UserID == uuid.Nil {
		return ErrTaskUserIDEmpty
	}

	if t.Title == "" {
		return ErrTaskTitleEmpty
	}

	if len(t.Title) > 200 {
		return ErrTaskTitleTooLong
	}

	if t.Start.IsZero() {
		return ErrTaskStartZero
	}

	if t.End != nil && t.End.Before(t.Start) {
		return ErrTaskEndBeforeStart
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	if !t.ReminderOffset.Valid() {
		return ErrInvalidReminderOffset
	}

	if t.IsRecurring && t.RecurrenceRule == nil {
		return ErrRecurringRuleMissing
	}

	// Only a definition task owns the rule.
	if t.ParentTaskID != nil && (t.RecurrenceRule != nil || t.IsRecurring) {
		return ErrInstanceCarriesRule
	}

	if t.RecurrenceRule != nil {
		if err := t.RecurrenceRule.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Duration returns the task's duration, or zero if no end time is set.
func (t *Task) Duration() time.Duration {
	if t.End == nil {
		return 0
	}
	return t.End.Sub(t.Start)
}

// Touch updates the UpdatedAt timestamp.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// Offset returns the duration before the task start at which the reminder
// fires. The second return value is false for ReminderNone.
func (o ReminderOffset) Offset() (time.Duration, bool) {
	switch o {
	case ReminderAtTime:
		return 0, true
	case ReminderBefore5Min:
		return 5 * time.Minute, true
	case ReminderBefore15Min:
		return 15 * time.Minute, true
	case ReminderBefore30Min:
		return 30 * time.Minute, true
	case ReminderBefore1Hour:
		return time.Hour, true
	case ReminderBefore1Day:
		return 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Valid reports whether p is a recognized priority value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Valid reports whether o is a recognized reminder offset value.
func (o ReminderOffset) Valid() bool {
	switch o {
	case ReminderNone, ReminderAtTime, ReminderBefore5Min, ReminderBefore15Min,
		ReminderBefore30Min, ReminderBefore1Hour, ReminderBefore1Day:
		return true
	default:
		return false
	}
}

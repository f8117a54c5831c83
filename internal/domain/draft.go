package domain

import (
	"time"

	"github.com/google/uuid"
)

// TaskDraft is a task extracted from free text before it is owned by a
// user. The extractor produces drafts; the task service turns them into
// stored tasks.
type TaskDraft struct {
	Title          string          `json:"title"`
	Start          time.Time       `json:"start"`
	End            *time.Time      `json:"end,omitempty"`
	Priority       Priority        `json:"priority"`
	IsRecurring    bool            `json:"is_recurring"`
	RecurrenceRule *RecurrenceRule `json:"recurrence_rule,omitempty"`
	ReminderOffset ReminderOffset  `json:"reminder_offset,omitempty"`
	IsImportant    bool            `json:"is_important"`
}

// ToTask materializes the draft as a Task owned by the given user.
// Zero-valued priority and reminder fields get their defaults.
// Returns an error if the resulting task fails validation.
func (d *TaskDraft) ToTask(userID uuid.UUID) (*Task, error) {
	task, err := NewTask(userID, d.Title, d.Start, d.End)
	if err != nil {
		return nil, err
	}

	if d.Priority != "" {
		task.Priority = d.Priority
	}
	if d.ReminderOffset != "" {
		task.ReminderOffset = d.ReminderOffset
	}
	task.IsImportant = d.IsImportant
	task.IsRecurring = d.IsRecurring
	task.RecurrenceRule = d.RecurrenceRule

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

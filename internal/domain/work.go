package domain

import (
	"errors"
	"time"
)

// Common validation errors for WorkRequest and TimeSlot
var (
	ErrWorkDescriptionEmpty   = errors.New("work description cannot be empty")
	ErrWorkDurationNotPositive = errors.New("work duration must be positive")
	ErrWorkDurationTooLong    = errors.New("work duration cannot exceed 24 hours")
	ErrSlotEndBeforeStart     = errors.New("slot end time cannot precede its start time")
	ErrSlotScoreOutOfRange    = errors.New("slot score must be in range 1 to 10")
)

// WorkRequest describes a candidate piece of work to be scheduled: how long
// it takes, when it must be done by, and the caller's free-text preference
// hints (for example "morning" or "quiet"). It is computed on demand and
// never persisted; the caller turns a chosen slot into a Task explicitly.
type WorkRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DurationHours float64    `json:"duration_hours"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Priority      Priority   `json:"priority"`
	Preferences   []string   `json:"preferences,omitempty"`
}

// Validate checks if the WorkRequest has valid data.
// Returns an error if any field fails validation.
func (w *WorkRequest) Validate() error {
	if w.Description == "" {
		return ErrWorkDescriptionEmpty
	}

	if w.DurationHours <= 0 {
		return ErrWorkDurationNotPositive
	}

	if w.DurationHours > 24 {
		return ErrWorkDurationTooLong
	}

	if !w.Priority.Valid() {
		return ErrInvalidPriority
	}

	return nil
}

// Duration returns the requested working time as a time.Duration.
func (w *WorkRequest) Duration() time.Duration {
	return time.Duration(w.DurationHours * float64(time.Hour))
}

// TimeSlot is a candidate interval proposed for a work request, carrying a
// recommendation score in [1,10] and a human-readable rationale.
type TimeSlot struct {
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Score  int       `json:"score"`
	Reason string    `json:"reason"`
}

// Validate checks if the TimeSlot has valid data.
func (s *TimeSlot) Validate() error {
	if s.End.Before(s.Start) {
		return ErrSlotEndBeforeStart
	}

	if s.Score < 1 || s.Score > 10 {
		return ErrSlotScoreOutOfRange
	}

	return nil
}

// Overlaps reports whether the slot half-open-intersects the given task.
// A task without an end time is treated as a one-hour block.
func (s *TimeSlot) Overlaps(t *Task) bool {
	end := t.Start.Add(time.Hour)
	if t.End != nil {
		end = *t.End
	}
	return s.Start.Before(end) && s.End.After(t.Start)
}

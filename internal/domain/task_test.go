package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTask(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	task, err := NewTask(userID, "Write report", start, &end)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if task.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if task.UserID != userID {
		t.Errorf("Expected user ID %s, got %s", userID, task.UserID)
	}

	if task.Priority != PriorityMedium {
		t.Errorf("Expected default priority %s, got %s", PriorityMedium, task.Priority)
	}

	if task.ReminderOffset != ReminderNone {
		t.Errorf("Expected default reminder offset %s, got %s", ReminderNone, task.ReminderOffset)
	}

	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Test invalid userID
	_, err = NewTask(uuid.Nil, "Write report", start, nil)
	if err != ErrTaskUserIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskUserIDEmpty, err)
	}

	// Test empty title
	_, err = NewTask(userID, "", start, nil)
	if err != ErrTaskTitleEmpty {
		t.Errorf("Expected error %v, got %v", ErrTaskTitleEmpty, err)
	}

	// Test zero start
	_, err = NewTask(userID, "Write report", time.Time{}, nil)
	if err != ErrTaskStartZero {
		t.Errorf("Expected error %v, got %v", ErrTaskStartZero, err)
	}

	// Test end before start
	badEnd := start.Add(-time.Hour)
	_, err = NewTask(userID, "Write report", start, &badEnd)
	if err != ErrTaskEndBeforeStart {
		t.Errorf("Expected error %v, got %v", ErrTaskEndBeforeStart, err)
	}
}

func TestTaskValidate(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	validTask := Task{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Title:          "Team sync",
		Start:          start,
		Priority:       PriorityHigh,
		ReminderOffset: ReminderBefore15Min,
	}

	if err := validTask.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Recurring without a rule
	invalid := validTask
	invalid.IsRecurring = true
	if err := invalid.Validate(); err != ErrRecurringRuleMissing {
		t.Errorf("Expected error %v, got %v", ErrRecurringRuleMissing, err)
	}

	// An instance must not carry the rule
	parent := uuid.New()
	invalid = validTask
	invalid.ParentTaskID = &parent
	invalid.RecurrenceRule = &RecurrenceRule{Frequency: FrequencyDaily, Interval: 1}
	if err := invalid.Validate(); err != ErrInstanceCarriesRule {
		t.Errorf("Expected error %v, got %v", ErrInstanceCarriesRule, err)
	}

	// Invalid priority
	invalid = validTask
	invalid.Priority = "urgent"
	if err := invalid.Validate(); err != ErrInvalidPriority {
		t.Errorf("Expected error %v, got %v", ErrInvalidPriority, err)
	}

	// Invalid reminder offset
	invalid = validTask
	invalid.ReminderOffset = "before_2min"
	if err := invalid.Validate(); err != ErrInvalidReminderOffset {
		t.Errorf("Expected error %v, got %v", ErrInvalidReminderOffset, err)
	}
}

func TestReminderOffsetOffset(t *testing.T) {
	t.Parallel()
	cases := []struct {
		offset ReminderOffset
		want   time.Duration
		ok     bool
	}{
		{ReminderNone, 0, false},
		{ReminderAtTime, 0, true},
		{ReminderBefore5Min, 5 * time.Minute, true},
		{ReminderBefore15Min, 15 * time.Minute, true},
		{ReminderBefore30Min, 30 * time.Minute, true},
		{ReminderBefore1Hour, time.Hour, true},
		{ReminderBefore1Day, 24 * time.Hour, true},
	}

	for _, tc := range cases {
		got, ok := tc.offset.Offset()
		if got != tc.want || ok != tc.ok {
			t.Errorf("Offset(%s) = (%v, %v), want (%v, %v)", tc.offset, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTaskDuration(t *testing.T) {
	t.Parallel()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)

	task := Task{Start: start, End: &end}
	if got := task.Duration(); got != 90*time.Minute {
		t.Errorf("Expected duration 90m, got %v", got)
	}

	task.End = nil
	if got := task.Duration(); got != 0 {
		t.Errorf("Expected zero duration without end, got %v", got)
	}
}

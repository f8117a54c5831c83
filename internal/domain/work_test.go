package domain

import (
	"testing"
	"time"
)

func TestWorkRequestValidate(t *testing.T) {
	t.Parallel()

	valid := WorkRequest{
		Description:   "write the quarterly report",
		DurationHours: 2,
		Priority:      PriorityMedium,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	invalid := valid
	invalid.DurationHours = 0
	if err := invalid.Validate(); err != ErrWorkDurationNotPositive {
		t.Errorf("Expected error %v, got %v", ErrWorkDurationNotPositive, err)
	}

	invalid = valid
	invalid.DurationHours = 25
	if err := invalid.Validate(); err != ErrWorkDurationTooLong {
		t.Errorf("Expected error %v, got %v", ErrWorkDurationTooLong, err)
	}

	invalid = valid
	invalid.Description = ""
	if err := invalid.Validate(); err != ErrWorkDescriptionEmpty {
		t.Errorf("Expected error %v, got %v", ErrWorkDescriptionEmpty, err)
	}
}

func TestTimeSlotOverlaps(t *testing.T) {
	t.Parallel()

	slotStart := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	slot := TimeSlot{Start: slotStart, End: slotStart.Add(2 * time.Hour), Score: 7, Reason: "morning"}

	taskEnd := slotStart.Add(time.Hour)
	task := Task{Start: slotStart, End: &taskEnd}
	if !slot.Overlaps(&task) {
		t.Error("Expected overlap with task inside the slot")
	}

	// Half-open: a task ending exactly at the slot start does not overlap.
	before := Task{Start: slotStart.Add(-time.Hour), End: &slotStart}
	if slot.Overlaps(&before) {
		t.Error("Expected no overlap with task ending at slot start")
	}

	// A task with no end is treated as a one-hour block.
	open := Task{Start: slotStart.Add(90 * time.Minute)}
	if !slot.Overlaps(&open) {
		t.Error("Expected overlap with open-ended task starting inside the slot")
	}
}

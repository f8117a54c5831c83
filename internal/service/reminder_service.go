package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/store"
)

// maxReminderLead is the largest configurable reminder offset. Tasks
// starting later than now plus this lead cannot have a due reminder yet.
const maxReminderLead = 24 * time.Hour

// ReminderService finds tasks whose reminders are due. Actual delivery is a
// transport concern; the periodic scan marks reminders sent and leaves a log
// trail for the notifier.
type ReminderService struct {
	store        store.TaskStore
	logger       *slog.Logger
	timeFunc     func() time.Time // Injectable for testing
	invalidators []Invalidator
}

// ReminderServiceOption customizes a ReminderService.
type ReminderServiceOption func(*ReminderService)

// WithReminderTimeFunc overrides the service clock.
func WithReminderTimeFunc(fn func() time.Time) ReminderServiceOption {
	return func(s *ReminderService) {
		s.timeFunc = fn
	}
}

// WithReminderInvalidators registers caches to drop when the scan marks
// reminders sent.
func WithReminderInvalidators(inv ...Invalidator) ReminderServiceOption {
	return func(s *ReminderService) {
		s.invalidators = append(s.invalidators, inv...)
	}
}

// NewReminderService creates a ReminderService.
func NewReminderService(ts store.TaskStore, logger *slog.Logger, opts ...ReminderServiceOption) *ReminderService {
	s := &ReminderService{
		store:    ts,
		logger:   logger,
		timeFunc: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pending returns the user's tasks whose reminders are due right now,
// without marking them sent.
func (s *ReminderService) Pending(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	now := s.timeFunc()

	candidates, err := s.store.ListPendingReminders(ctx, now.Add(maxReminderLead))
	if err != nil {
		return nil, err
	}

	var due []*domain.Task
	for _, task := range candidates {
		if task.UserID == userID && reminderDue(task, now) {
			due = append(due, task)
		}
	}

	// Important tasks first, then by start time.
	sort.SliceStable(due, func(i, j int) bool {
		if due[i].IsImportant != due[j].IsImportant {
			return due[i].IsImportant
		}
		return due[i].Start.Before(due[j].Start)
	})
	return due, nil
}

// Scan finds due reminders across all users, marks them sent, and returns
// how many fired. Run periodically by the scheduler.
func (s *ReminderService) Scan(ctx context.Context) (int, error) {
	now := s.timeFunc()

	candidates, err := s.store.ListPendingReminders(ctx, now.Add(maxReminderLead))
	if err != nil {
		return 0, err
	}

	var fired []uuid.UUID
	for _, task := range candidates {
		if !reminderDue(task, now) {
			continue
		}
		s.logger.InfoContext(ctx, "reminder due",
			"task_id", task.ID,
			"user_id", task.UserID,
			"title", task.Title,
			"start", task.Start)
		fired = append(fired, task.ID)
	}

	if len(fired) == 0 {
		return 0, nil
	}

	if err := s.store.MarkRemindersSent(ctx, fired); err != nil {
		return 0, err
	}
	for _, inv := range s.invalidators {
		inv.InvalidateAll()
	}
	return len(fired), nil
}

// reminderDue reports whether the task's reminder moment has passed.
func reminderDue(task *domain.Task, now time.Time) bool {
	offset, ok := task.ReminderOffset.Offset()
	if !ok {
		return false
	}
	return !now.Before(task.Start.Add(-offset))
}

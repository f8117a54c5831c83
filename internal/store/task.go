package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
)

// TaskStore defines the interface for task persistence. All reads and writes
// are scoped to a single user; a task owned by someone else behaves exactly
// like a missing one.
type TaskStore interface {
	// Create saves a new task to the store.
	// Returns ErrInvalidEntity wrapping the domain error if the task is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// CreateBatch saves several tasks atomically, typically a recurring
	// definition together with its generated instances. Either all tasks are
	// stored or none are.
	CreateBatch(ctx context.Context, tasks []*domain.Task) error

	// GetByID retrieves one of the user's tasks by ID.
	// Returns ErrTaskNotFound if it does not exist or is owned by another user.
	GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error)

	// ListByUser returns all of the user's tasks ordered by start time.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error)

	// ListRange returns the user's tasks whose start falls in [from, to),
	// ordered by start time.
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error)

	// Update rewrites an existing task.
	// Returns ErrTaskNotFound if it does not exist or is owned by another user.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes one of the user's tasks.
	// Returns ErrTaskNotFound if it does not exist or is owned by another user.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// DeleteRange removes the user's tasks whose start falls in [from, to)
	// and reports how many were removed. An empty range is not an error.
	DeleteRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error)

	// ListPendingReminders returns tasks across all users that have a
	// reminder configured, have not had it sent, and start before the given
	// bound. Callers apply the per-task offset to decide which are due.
	ListPendingReminders(ctx context.Context, startBefore time.Time) ([]*domain.Task, error)

	// MarkRemindersSent flags the given tasks' reminders as delivered.
	MarkRemindersSent(ctx context.Context, taskIDs []uuid.UUID) error
}

package sqlite

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/store"
)

// taskRecord is the database shape of a task. The recurrence rule is stored
// as a JSON blob since it is only ever read back whole.
type taskRecord struct {
	ID             string    `gorm:"primaryKey;size:36"`
	UserID         string    `gorm:"size:36;index"`
	Title          string    `gorm:"size:200;not null"`
	StartTime      time.Time `gorm:"index"`
	EndTime        *time.Time
	Priority       string `gorm:"size:10"`
	Recurrence     []byte
	IsRecurring    bool
	ParentTaskID   *string `gorm:"size:36;index"`
	ReminderOffset string  `gorm:"size:20"`
	IsImportant    bool
	ReminderSent   bool      `gorm:"index"`
	CreatedAt      time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime:false"`
}

func (taskRecord) TableName() string { return "tasks" }

// TaskStore implements store.TaskStore on SQLite.
type TaskStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewTaskStore creates a TaskStore backed by the given database handle.
func NewTaskStore(db *gorm.DB, logger *slog.Logger) *TaskStore {
	return &TaskStore{db: db, logger: logger}
}

// Create saves a new task to the store.
func (s *TaskStore) Create(ctx context.Context, task *domain.Task) error {
	rec, err := toRecord(task)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// CreateBatch saves several tasks in a single transaction.
func (s *TaskStore) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	recs := make([]*taskRecord, 0, len(tasks))
	for _, task := range tasks {
		rec, err := toRecord(task)
		if err != nil {
			return err
		}
		recs = append(recs, rec)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(recs).Error
	})
	if err != nil {
		return fmt.Errorf("create task batch: %w", err)
	}
	return nil
}

// GetByID retrieves one of the user's tasks by ID.
func (s *TaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	var rec taskRecord
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID.String(), userID.String()).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, store.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return toDomain(&rec)
}

// ListByUser returns all of the user's tasks ordered by start time.
func (s *TaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	var recs []taskRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID.String()).
		Order("start_time").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return toDomainSlice(recs)
}

// ListRange returns the user's tasks starting in [from, to).
func (s *TaskStore) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	var recs []taskRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID.String(), from, to).
		Order("start_time").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks in range: %w", err)
	}
	return toDomainSlice(recs)
}

// Update rewrites an existing task.
func (s *TaskStore) Update(ctx context.Context, task *domain.Task) error {
	rec, err := toRecord(task)
	if err != nil {
		return err
	}

	res := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ? AND user_id = ?", rec.ID, rec.UserID).
		Select("*").
		Updates(rec)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// Delete removes one of the user's tasks.
func (s *TaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID.String(), userID.String()).
		Delete(&taskRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrTaskNotFound
	}
	return nil
}

// DeleteRange removes the user's tasks starting in [from, to).
func (s *TaskStore) DeleteRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND start_time >= ? AND start_time < ?", userID.String(), from, to).
		Delete(&taskRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete tasks in range: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ListPendingReminders returns unsent reminder tasks starting before the bound.
func (s *TaskStore) ListPendingReminders(ctx context.Context, startBefore time.Time) ([]*domain.Task, error) {
	var recs []taskRecord
	err := s.db.WithContext(ctx).
		Where("reminder_offset <> ? AND reminder_sent = ? AND start_time < ?",
			string(domain.ReminderNone), false, startBefore).
		Order("start_time").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list pending reminders: %w", err)
	}
	return toDomainSlice(recs)
}

// MarkRemindersSent flags the given tasks' reminders as delivered.
func (s *TaskStore) MarkRemindersSent(ctx context.Context, taskIDs []uuid.UUID) error {
	if len(taskIDs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(taskIDs))
	for _, id := range taskIDs {
		ids = append(ids, id.String())
	}

	err := s.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id IN ?", ids).
		Update("reminder_sent", true).Error
	if err != nil {
		return fmt.Errorf("mark reminders sent: %w", err)
	}
	return nil
}

// toRecord validates the task and converts it to its database shape.
func toRecord(task *domain.Task) (*taskRecord, error) {
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	rec := &taskRecord{
		ID:             task.ID.String(),
		UserID:         task.UserID.String(),
		Title:          task.Title,
		StartTime:      task.Start,
		EndTime:        task.End,
		Priority:       string(task.Priority),
		IsRecurring:    task.IsRecurring,
		ReminderOffset: string(task.ReminderOffset),
		IsImportant:    task.IsImportant,
		ReminderSent:   task.ReminderSent,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}

	if task.ParentTaskID != nil {
		parent := task.ParentTaskID.String()
		rec.ParentTaskID = &parent
	}

	if task.RecurrenceRule != nil {
		blob, err := json.Marshal(task.RecurrenceRule)
		if err != nil {
			return nil, fmt.Errorf("encode recurrence rule: %w", err)
		}
		rec.Recurrence = blob
	}

	return rec, nil
}

// toDomain converts a database record back to the domain type.
func toDomain(rec *taskRecord) (*domain.Task, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("parse task id %q: %w", rec.ID, err)
	}
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id %q: %w", rec.UserID, err)
	}

	task := &domain.Task{
		ID:             id,
		UserID:         userID,
		Title:          rec.Title,
		Start:          rec.StartTime,
		End:            rec.EndTime,
		Priority:       domain.Priority(rec.Priority),
		IsRecurring:    rec.IsRecurring,
		ReminderOffset: domain.ReminderOffset(rec.ReminderOffset),
		IsImportant:    rec.IsImportant,
		ReminderSent:   rec.ReminderSent,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}

	if rec.ParentTaskID != nil {
		parent, err := uuid.Parse(*rec.ParentTaskID)
		if err != nil {
			return nil, fmt.Errorf("parse parent task id %q: %w", *rec.ParentTaskID, err)
		}
		task.ParentTaskID = &parent
	}

	if len(rec.Recurrence) > 0 {
		var rule domain.RecurrenceRule
		if err := json.Unmarshal(rec.Recurrence, &rule); err != nil {
			return nil, fmt.Errorf("decode recurrence rule: %w", err)
		}
		task.RecurrenceRule = &rule
	}

	return task, nil
}

func toDomainSlice(recs []taskRecord) ([]*domain.Task, error) {
	tasks := make([]*domain.Task, 0, len(recs))
	for i := range recs {
		task, err := toDomain(&recs[i])
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/store"
)

// MemoryTaskStore implements store.TaskStore backed by a map. Set Err to
// force every call to fail with that error.
type MemoryTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task

	// Err, when non-nil, is returned by every method.
	Err error

	// ListCalls counts ListByUser invocations, for cache assertions.
	ListCalls int
}

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Count returns the number of stored tasks.
func (m *MemoryTaskStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *MemoryTaskStore) Create(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *MemoryTaskStore) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, task := range tasks {
		cp := *task
		m.tasks[task.ID] = &cp
	}
	return nil
}

func (m *MemoryTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	task, ok := m.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (m *MemoryTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryTaskStore) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == userID && !task.Start.Before(from) && task.Start.Before(to) {
			cp := *task
			out = append(out, &cp)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryTaskStore) Update(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *MemoryTaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	task, ok := m.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, taskID)
	return nil
}

func (m *MemoryTaskStore) DeleteRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var deleted int64
	for id, task := range m.tasks {
		if task.UserID == userID && !task.Start.Before(from) && task.Start.Before(to) {
			delete(m.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}

func (m *MemoryTaskStore) ListPendingReminders(ctx context.Context, startBefore time.Time) ([]*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.ReminderOffset != domain.ReminderNone && !task.ReminderSent && task.Start.Before(startBefore) {
			cp := *task
			out = append(out, &cp)
		}
	}
	sortByStart(out)
	return out, nil
}

func (m *MemoryTaskStore) MarkRemindersSent(ctx context.Context, taskIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, id := range taskIDs {
		if task, ok := m.tasks[id]; ok {
			task.ReminderSent = true
		}
	}
	return nil
}

func sortByStart(tasks []*domain.Task) {
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Start.Before(tasks[j].Start)
	})
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

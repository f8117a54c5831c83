package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore for service tests.
type fakeTaskStore struct {
	mu        sync.Mutex
	tasks     map[uuid.UUID]*domain.Task
	listCalls int
	failWith  error
}

var _ store.TaskStore = (*fakeTaskStore)(nil)

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) Create(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskStore) CreateBatch(ctx context.Context, tasks []*domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for _, task := range tasks {
		cp := *task
		f.tasks[task.ID] = &cp
	}
	return nil
}

func (f *fakeTaskStore) GetByID(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, store.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (f *fakeTaskStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.UserID == userID {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeTaskStore) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.UserID == userID && !task.Start.Before(from) && task.Start.Before(to) {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeTaskStore) Update(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	cp := *task
	f.tasks[task.ID] = &cp
	return nil
}

func (f *fakeTaskStore) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != userID {
		return store.ErrTaskNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

func (f *fakeTaskStore) DeleteRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for id, task := range f.tasks {
		if task.UserID == userID && !task.Start.Before(from) && task.Start.Before(to) {
			delete(f.tasks, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeTaskStore) ListPendingReminders(ctx context.Context, startBefore time.Time) ([]*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Task
	for _, task := range f.tasks {
		if task.ReminderOffset != domain.ReminderNone && !task.ReminderSent && task.Start.Before(startBefore) {
			cp := *task
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (f *fakeTaskStore) MarkRemindersSent(ctx context.Context, taskIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range taskIDs {
		if task, ok := f.tasks[id]; ok {
			task.ReminderSent = true
		}
	}
	return nil
}

func (f *fakeTaskStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tasks)
}

// stubExtractor returns fixed drafts or an error.
type stubExtractor struct {
	drafts []*domain.TaskDraft
	err    error
	calls  int
}

func (s *stubExtractor) ExtractTasks(ctx context.Context, text string, now time.Time) ([]*domain.TaskDraft, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.drafts, nil
}

// stubMatcher returns fixed task IDs or an error.
type stubMatcher struct {
	ids   []uuid.UUID
	err   error
	calls int
}

func (s *stubMatcher) MatchTasks(ctx context.Context, description string, tasks []*domain.Task, now time.Time) ([]uuid.UUID, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

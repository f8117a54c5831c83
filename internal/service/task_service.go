package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/cache"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/parsing"
	"github.com/smarttime/smarttime-api/internal/recurrence"
	"github.com/smarttime/smarttime-api/internal/store"
)

// TextResult is the outcome of a text-driven operation on tasks. Source
// tells callers whether the language model or the degraded keyword path
// produced the match.
type TextResult struct {
	Tasks  []*domain.Task `json:"tasks"`
	Source parsing.Source `json:"source"`
}

// TaskService provides task CRUD, recurrence expansion, and text extraction.
type TaskService struct {
	store        store.TaskStore
	extractor    parsing.Extractor // nil when the model is not configured
	matcher      parsing.Matcher   // nil when the model is not configured
	fallback     *parsing.FallbackParser
	listCache    *cache.Cache[[]*domain.Task]
	extractCache *cache.Cache[parsing.Result] // optional, model results only
	invalidators []Invalidator
	logger       *slog.Logger
	timeFunc     func() time.Time
	maxInstances int
}

// TaskServiceOption customizes a TaskService.
type TaskServiceOption func(*TaskService)

// WithTaskTimeFunc overrides the service clock.
func WithTaskTimeFunc(fn func() time.Time) TaskServiceOption {
	return func(s *TaskService) {
		s.timeFunc = fn
	}
}

// WithMaxInstances bounds recurrence expansion.
func WithMaxInstances(n int) TaskServiceOption {
	return func(s *TaskService) {
		s.maxInstances = n
	}
}

// WithInvalidators registers additional caches to drop on writes, beyond
// the service's own list cache.
func WithInvalidators(inv ...Invalidator) TaskServiceOption {
	return func(s *TaskService) {
		s.invalidators = append(s.invalidators, inv...)
	}
}

// WithExtractCache caches successful model extractions keyed by input text.
// Degraded fallback results are never cached, so the model gets retried
// once it recovers.
func WithExtractCache(c *cache.Cache[parsing.Result]) TaskServiceOption {
	return func(s *TaskService) {
		s.extractCache = c
	}
}

// WithMatcher sets the model-backed matcher used by DeleteByDescription.
// Without it, matching uses the local keyword matcher only.
func WithMatcher(m parsing.Matcher) TaskServiceOption {
	return func(s *TaskService) {
		s.matcher = m
	}
}

// NewTaskService creates a TaskService. The extractor may be nil, in which
// case all text extraction goes through the keyword fallback.
func NewTaskService(
	ts store.TaskStore,
	extractor parsing.Extractor,
	listCache *cache.Cache[[]*domain.Task],
	logger *slog.Logger,
	opts ...TaskServiceOption,
) *TaskService {
	s := &TaskService{
		store:        ts,
		extractor:    extractor,
		fallback:     parsing.NewFallbackParser(),
		listCache:    listCache,
		logger:       logger,
		timeFunc:     time.Now,
		maxInstances: recurrence.DefaultMaxInstances,
	}
	s.invalidators = append(s.invalidators, listCache)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create persists the task. A recurring definition is expanded and stored
// together with its generated instances; the definition is always the first
// element of the returned slice.
func (s *TaskService) Create(ctx context.Context, task *domain.Task) ([]*domain.Task, error) {
	if err := task.Validate(); err != nil {
		return nil, err
	}

	created := []*domain.Task{task}
	if task.IsRecurring {
		instances, err := recurrence.Expand(task, s.maxInstances)
		if err != nil {
			return nil, fmt.Errorf("expand recurrence: %w", err)
		}
		created = append(created, instances...)

		if err := s.store.CreateBatch(ctx, created); err != nil {
			return nil, err
		}
	} else {
		if err := s.store.Create(ctx, task); err != nil {
			return nil, err
		}
	}

	s.invalidate()
	s.logger.InfoContext(ctx, "task created",
		"task_id", task.ID,
		"user_id", task.UserID,
		"recurring", task.IsRecurring,
		"instances", len(created)-1)
	return created, nil
}

// List returns all of the user's tasks, served from cache when fresh.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]*domain.Task, error) {
	key := cache.Key("tasks", userID.String())
	if tasks, ok := s.listCache.Get(key); ok {
		return tasks, nil
	}

	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(key, tasks)
	return tasks, nil
}

// Get returns one of the user's tasks.
func (s *TaskService) Get(ctx context.Context, userID, taskID uuid.UUID) (*domain.Task, error) {
	task, err := s.store.GetByID(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update rewrites one of the user's tasks.
func (s *TaskService) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	task.Touch()
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	s.invalidate()
	return task, nil
}

// Delete removes one of the user's tasks.
func (s *TaskService) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if err := s.store.Delete(ctx, userID, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	s.invalidate()
	return nil
}

// DeleteDay removes the user's tasks on the reference date.
func (s *TaskService) DeleteDay(ctx context.Context, userID uuid.UUID, ref time.Time) (int64, error) {
	from := midnight(ref)
	return s.deleteRange(ctx, userID, from, from.AddDate(0, 0, 1))
}

// DeleteWeek removes the user's tasks in the Monday-based week of the
// reference date.
func (s *TaskService) DeleteWeek(ctx context.Context, userID uuid.UUID, ref time.Time) (int64, error) {
	offset := (int(ref.Weekday()) + 6) % 7
	from := midnight(ref).AddDate(0, 0, -offset)
	return s.deleteRange(ctx, userID, from, from.AddDate(0, 0, 7))
}

// DeleteMonth removes the user's tasks in the calendar month of the
// reference date.
func (s *TaskService) DeleteMonth(ctx context.Context, userID uuid.UUID, ref time.Time) (int64, error) {
	from := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, ref.Location())
	return s.deleteRange(ctx, userID, from, from.AddDate(0, 1, 0))
}

func (s *TaskService) deleteRange(ctx context.Context, userID uuid.UUID, from, to time.Time) (int64, error) {
	n, err := s.store.DeleteRange(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.invalidate()
	}
	s.logger.InfoContext(ctx, "tasks deleted in range",
		"user_id", userID, "from", from, "to", to, "count", n)
	return n, nil
}

// Upcoming returns the user's tasks starting within the given window from
// now. Always reads through to the store so the view is current.
func (s *TaskService) Upcoming(ctx context.Context, userID uuid.UUID, within time.Duration) ([]*domain.Task, error) {
	now := s.timeFunc()
	return s.store.ListRange(ctx, userID, now, now.Add(within))
}

// ExtractDrafts turns free text into task drafts, one per task the text
// describes. The language model is tried first when configured; on failure
// the keyword parser takes over and the result is marked as degraded.
func (s *TaskService) ExtractDrafts(ctx context.Context, text string) (*parsing.Result, error) {
	now := s.timeFunc()

	key := cache.Key("extract", text)
	if s.extractCache != nil {
		if cached, ok := s.extractCache.Get(key); ok {
			return &cached, nil
		}
	}

	if s.extractor != nil {
		drafts, err := s.extractor.ExtractTasks(ctx, text, now)
		if err == nil {
			result := parsing.Result{Drafts: drafts, Source: parsing.SourceModel}
			if s.extractCache != nil {
				s.extractCache.Set(key, result)
			}
			return &result, nil
		}
		if errors.Is(err, parsing.ErrEmptyInput) {
			return nil, err
		}
		s.logger.WarnContext(ctx, "model extraction failed, using fallback parser", "error", err)
	}

	drafts, err := s.fallback.ExtractTasks(ctx, text, now)
	if err != nil {
		return nil, err
	}
	return &parsing.Result{Drafts: drafts, Source: parsing.SourceFallback}, nil
}

// CreateFromText extracts tasks from text and persists every one of them
// for the user.
func (s *TaskService) CreateFromText(ctx context.Context, userID uuid.UUID, text string) (*TextResult, error) {
	result, err := s.ExtractDrafts(ctx, text)
	if err != nil {
		return nil, err
	}

	var created []*domain.Task
	for _, draft := range result.Drafts {
		task, err := draft.ToTask(userID)
		if err != nil {
			return nil, err
		}
		batch, err := s.Create(ctx, task)
		if err != nil {
			return nil, err
		}
		created = append(created, batch...)
	}

	return &TextResult{Tasks: created, Source: result.Source}, nil
}

// DeleteByDescription matches the user's tasks against a free-form
// description and deletes every match. The model-backed matcher is tried
// first when configured; on failure the local keyword matcher takes over
// and the result is marked as degraded. A description matching nothing
// deletes nothing.
func (s *TaskService) DeleteByDescription(ctx context.Context, userID uuid.UUID, description string) (*TextResult, error) {
	tasks, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	matched, source, err := s.matchTasks(ctx, description, tasks)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]*domain.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}

	var deleted []*domain.Task
	for _, id := range matched {
		task, ok := byID[id]
		if !ok {
			continue
		}
		if err := s.store.Delete(ctx, userID, id); err != nil {
			if errors.Is(err, store.ErrTaskNotFound) {
				continue
			}
			return nil, err
		}
		deleted = append(deleted, task)
	}

	if len(deleted) > 0 {
		s.invalidate()
	}
	s.logger.InfoContext(ctx, "tasks deleted by description",
		"user_id", userID, "matched", len(matched), "deleted", len(deleted), "source", source)
	return &TextResult{Tasks: deleted, Source: source}, nil
}

func (s *TaskService) matchTasks(ctx context.Context, description string, tasks []*domain.Task) ([]uuid.UUID, parsing.Source, error) {
	now := s.timeFunc()

	if s.matcher != nil {
		matched, err := s.matcher.MatchTasks(ctx, description, tasks, now)
		if err == nil {
			return matched, parsing.SourceModel, nil
		}
		if errors.Is(err, parsing.ErrEmptyInput) {
			return nil, "", err
		}
		s.logger.WarnContext(ctx, "model matching failed, using fallback matcher", "error", err)
	}

	matched, err := s.fallback.MatchTasks(ctx, description, tasks, now)
	if err != nil {
		return nil, "", err
	}
	return matched, parsing.SourceFallback, nil
}

func (s *TaskService) invalidate() {
	for _, inv := range s.invalidators {
		inv.InvalidateAll()
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

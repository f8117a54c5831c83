package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/cache"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/schedule"
	"github.com/smarttime/smarttime-api/internal/store"
)

// ScheduleService produces ranked slot recommendations for work requests
// and turns a chosen slot into a task.
type ScheduleService struct {
	store       store.TaskStore
	tasks       *TaskService
	recommender *schedule.Recommender
	slotCache   *cache.Cache[[]domain.TimeSlot]
	logger      *slog.Logger
}

// NewScheduleService creates a ScheduleService.
func NewScheduleService(
	ts store.TaskStore,
	tasks *TaskService,
	recommender *schedule.Recommender,
	slotCache *cache.Cache[[]domain.TimeSlot],
	logger *slog.Logger,
) *ScheduleService {
	return &ScheduleService{
		store:       ts,
		tasks:       tasks,
		recommender: recommender,
		slotCache:   slotCache,
		logger:      logger,
	}
}

// Analyze recommends up to five conflict-free slots for the request.
// Identical requests by the same user are served from cache until the
// schedule changes or the TTL passes.
func (s *ScheduleService) Analyze(ctx context.Context, userID uuid.UUID, req *domain.WorkRequest) ([]domain.TimeSlot, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key, err := requestKey(userID, req)
	if err != nil {
		return nil, err
	}
	if slots, ok := s.slotCache.Get(key); ok {
		return slots, nil
	}

	existing, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	slots, err := s.recommender.Recommend(req, existing)
	if err != nil {
		return nil, err
	}

	s.slotCache.Set(key, slots)
	s.logger.InfoContext(ctx, "schedule analyzed",
		"user_id", userID, "slots", len(slots))
	return slots, nil
}

// Confirm books the chosen slot as a task. The slot is re-checked against
// the current schedule since it may have been recommended a while ago.
func (s *ScheduleService) Confirm(ctx context.Context, userID uuid.UUID, req *domain.WorkRequest, slot domain.TimeSlot) (*domain.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if slot.Overlaps(t) {
			return nil, ErrSlotConflict
		}
	}

	end := slot.End
	task, err := domain.NewTask(userID, req.Title, slot.Start, &end)
	if err != nil {
		return nil, err
	}
	task.Priority = req.Priority
	task.IsImportant = req.Priority == domain.PriorityHigh

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}

	// The booked slot changes every recommendation for this user.
	s.slotCache.InvalidateAll()

	return created[0], nil
}

// requestKey builds a cache key from the user and the full request shape.
func requestKey(userID uuid.UUID, req *domain.WorkRequest) (string, error) {
	blob, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("fingerprint work request: %w", err)
	}
	return cache.Key("schedule", userID.String(), string(blob)), nil
}

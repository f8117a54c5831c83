package parsing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smarttime/smarttime-api/internal/domain"
)

func matchTask(t *testing.T, title string, start time.Time, priority domain.Priority) *domain.Task {
	t.Helper()
	task, err := domain.NewTask(uuid.New(), title, start, nil)
	require.NoError(t, err)
	task.Priority = priority
	return task
}

func matchIDs(t *testing.T, description string, tasks []*domain.Task) []uuid.UUID {
	t.Helper()
	ids, err := NewFallbackParser().MatchTasks(context.Background(), description, tasks, parserNow)
	require.NoError(t, err)
	return ids
}

func TestFallbackMatcher_TitleKeyword(t *testing.T) {
	t.Parallel()

	dentist := matchTask(t, "Dentist checkup", parserNow.Add(26*time.Hour), domain.PriorityMedium)
	gym := matchTask(t, "Gym session", parserNow.Add(28*time.Hour), domain.PriorityMedium)

	ids := matchIDs(t, "cancel the dentist appointment", []*domain.Task{dentist, gym})
	assert.Equal(t, []uuid.UUID{dentist.ID}, ids)
}

func TestFallbackMatcher_DateScoped(t *testing.T) {
	t.Parallel()

	// parserNow is Monday 2025-03-10 08:00 UTC.
	today := matchTask(t, "standup", parserNow.Add(2*time.Hour), domain.PriorityMedium)
	tomorrow := matchTask(t, "standup", parserNow.Add(26*time.Hour), domain.PriorityMedium)

	ids := matchIDs(t, "delete tomorrow's standup", []*domain.Task{today, tomorrow})
	assert.Equal(t, []uuid.UUID{tomorrow.ID}, ids)
}

func TestFallbackMatcher_ClearAllOfDay(t *testing.T) {
	t.Parallel()

	first := matchTask(t, "standup", parserNow.Add(2*time.Hour), domain.PriorityMedium)
	second := matchTask(t, "review", parserNow.Add(6*time.Hour), domain.PriorityMedium)
	later := matchTask(t, "planning", parserNow.Add(30*time.Hour), domain.PriorityMedium)

	ids := matchIDs(t, "delete all tasks today", []*domain.Task{first, second, later})
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
}

func TestFallbackMatcher_DaypartScoped(t *testing.T) {
	t.Parallel()

	morning := matchTask(t, "standup", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), domain.PriorityMedium)
	afternoon := matchTask(t, "review", time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC), domain.PriorityMedium)

	ids := matchIDs(t, "clear my afternoon today", []*domain.Task{morning, afternoon})
	assert.Equal(t, []uuid.UUID{afternoon.ID}, ids)
}

func TestFallbackMatcher_WeekScoped(t *testing.T) {
	t.Parallel()

	thisWeek := matchTask(t, "run", parserNow.AddDate(0, 0, 3), domain.PriorityMedium)
	nextWeek := matchTask(t, "run", parserNow.AddDate(0, 0, 9), domain.PriorityMedium)

	ids := matchIDs(t, "delete this week's run", []*domain.Task{thisWeek, nextWeek})
	assert.Equal(t, []uuid.UUID{thisWeek.ID}, ids)
}

func TestFallbackMatcher_PriorityScoped(t *testing.T) {
	t.Parallel()

	urgent := matchTask(t, "file taxes", parserNow.Add(2*time.Hour), domain.PriorityHigh)
	casual := matchTask(t, "tidy desk", parserNow.Add(4*time.Hour), domain.PriorityLow)

	ids := matchIDs(t, "remove all urgent tasks", []*domain.Task{urgent, casual})
	assert.Equal(t, []uuid.UUID{urgent.ID}, ids)
}

func TestFallbackMatcher_NoConstraintMatchesNothing(t *testing.T) {
	t.Parallel()

	task := matchTask(t, "write report", parserNow.Add(2*time.Hour), domain.PriorityMedium)

	ids := matchIDs(t, "delete the task", []*domain.Task{task})
	assert.Empty(t, ids)
}

func TestFallbackMatcher_EmptyDescription(t *testing.T) {
	t.Parallel()

	_, err := NewFallbackParser().MatchTasks(context.Background(), "  ", nil, parserNow)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

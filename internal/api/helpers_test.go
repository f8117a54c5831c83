package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/smarttime/smarttime-api/internal/api"
	"github.com/smarttime/smarttime-api/internal/api/shared"
	"github.com/smarttime/smarttime-api/internal/cache"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/job"
	"github.com/smarttime/smarttime-api/internal/mocks"
	"github.com/smarttime/smarttime-api/internal/schedule"
	"github.com/smarttime/smarttime-api/internal/service"
)

// apiNow is a Monday morning, fixed so slot recommendations are stable.
var apiNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *mocks.MemoryTaskStore
	tasks    *service.TaskService
	schedule *service.ScheduleService
	queue    *job.Queue
	router   chi.Router
	userID   uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := mocks.NewMemoryTaskStore()

	listCache := cache.New[[]*domain.Task](time.Minute)
	slotCache := cache.New[[]domain.TimeSlot](time.Minute)

	tasks := service.NewTaskService(ts, nil, listCache, logger,
		service.WithTaskTimeFunc(func() time.Time { return apiNow }),
		service.WithInvalidators(slotCache))

	recommender := schedule.NewRecommender(schedule.WithTimeFunc(func() time.Time { return apiNow }))
	sched := service.NewScheduleService(ts, tasks, recommender, slotCache, logger)
	reminders := service.NewReminderService(ts, logger,
		service.WithReminderTimeFunc(func() time.Time { return apiNow }))

	queue := job.NewQueue(job.QueueConfig{WorkerCount: 1, QueueSize: 4}, logger)
	queue.Start()
	t.Cleanup(queue.Stop)

	env := &testEnv{
		store:    ts,
		tasks:    tasks,
		schedule: sched,
		queue:    queue,
		userID:   uuid.New(),
	}

	taskHandler := api.NewTaskHandler(tasks, reminders, queue)
	scheduleHandler := api.NewScheduleHandler(sched)
	jobHandler := api.NewJobHandler(queue)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/tasks", taskHandler.CreateTask)
		r.Get("/tasks", taskHandler.ListTasks)
		r.Post("/tasks/parse", taskHandler.ParseText)
		r.Post("/tasks/parse/async", taskHandler.ParseTextAsync)
		r.Delete("/tasks/by-description", taskHandler.DeleteByDescription)
		r.Post("/tasks/delete/day", taskHandler.DeleteDay)
		r.Post("/tasks/delete/week", taskHandler.DeleteWeek)
		r.Post("/tasks/delete/month", taskHandler.DeleteMonth)
		r.Get("/tasks/reminders", taskHandler.Reminders)
		r.Get("/tasks/upcoming", taskHandler.Upcoming)
		r.Get("/tasks/{id}", taskHandler.GetTask)
		r.Put("/tasks/{id}", taskHandler.UpdateTask)
		r.Delete("/tasks/{id}", taskHandler.DeleteTask)
		r.Post("/schedule/analyze", scheduleHandler.Analyze)
		r.Post("/schedule/confirm", scheduleHandler.Confirm)
		r.Get("/jobs/{id}", jobHandler.GetJob)
	})
	env.router = r

	return env
}

// do performs a request as the environment's user, with the user ID already
// in the context the way the auth middleware would place it.
func (env *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	ctx := context.WithValue(r.Context(), shared.UserIDContextKey, env.userID)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r.WithContext(ctx))
	return w
}

// doAnonymous performs a request without an authenticated user.
func (env *testEnv) doAnonymous(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	r := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, r)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

// createTask stores a task directly, bypassing the HTTP layer.
func (env *testEnv) createTask(t *testing.T, title string, start time.Time) *domain.Task {
	t.Helper()

	task, err := domain.NewTask(env.userID, title, start, nil)
	require.NoError(t, err)
	created, err := env.tasks.Create(context.Background(), task)
	require.NoError(t, err)
	return created[0]
}

func waitForJob(t *testing.T, queue *job.Queue, id uuid.UUID) job.Job {
	t.Helper()

	var j job.Job
	require.Eventually(t, func() bool {
		got, ok := queue.Lookup(id)
		if !ok {
			return false
		}
		j = got
		return j.Status == job.StatusCompleted || j.Status == job.StatusFailed
	}, 2*time.Second, 10*time.Millisecond)
	return j
}

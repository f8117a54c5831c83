package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/api/shared"
	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/job"
	"github.com/smarttime/smarttime-api/internal/service"
)

const defaultUpcomingHours = 24

// TaskHandler handles task-related HTTP requests.
type TaskHandler struct {
	tasks     *service.TaskService
	reminders *service.ReminderService
	queue     *job.Queue
	validator *validator.Validate
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(
	tasks *service.TaskService,
	reminders *service.ReminderService,
	queue *job.Queue,
) *TaskHandler {
	return &TaskHandler{
		tasks:     tasks,
		reminders: reminders,
		queue:     queue,
		validator: validator.New(),
	}
}

// CreateTask handles POST /api/tasks requests. Recurring definitions expand
// into instances, so the response is always a list of created tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := req.toTask(userID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.tasks.Create(r.Context(), task)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, tasksToResponse(created))
}

// ListTasks handles GET /api/tasks requests.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// GetTask handles GET /api/tasks/{id} requests.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id} requests.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.tasks.Get(r.Context(), userID, taskID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	task.Title = req.Title
	task.Start = req.Start
	task.End = req.End
	if req.Priority != "" {
		task.Priority = domain.Priority(req.Priority)
	}
	if req.ReminderOffset != "" {
		task.ReminderOffset = domain.ReminderOffset(req.ReminderOffset)
	}
	task.IsImportant = req.IsImportant

	updated, err := h.tasks.Update(r.Context(), task)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(updated))
}

// DeleteTask handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := requireTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), userID, taskID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ParseText handles POST /api/tasks/parse requests. It extracts a task from
// free text and stores it synchronously.
func (h *TaskHandler) ParseText(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeParseRequest(w, r)
	if !ok {
		return
	}

	result, err := h.tasks.CreateFromText(r.Context(), userID, req.Text)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ParseTextResponse{
		Tasks:  tasksToResponse(result.Tasks),
		Source: string(result.Source),
	})
}

// ParseTextAsync handles POST /api/tasks/parse/async requests. It enqueues
// the extraction as a background job and returns the job ID for polling.
func (h *TaskHandler) ParseTextAsync(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	req, ok := h.decodeParseRequest(w, r)
	if !ok {
		return
	}

	jobID, err := h.queue.Submit(func(ctx context.Context) (any, error) {
		result, err := h.tasks.CreateFromText(ctx, userID, req.Text)
		if err != nil {
			return nil, err
		}
		return ParseTextResponse{
			Tasks:  tasksToResponse(result.Tasks),
			Source: string(result.Source),
		}, nil
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, JobSubmittedResponse{
		JobID:  jobID.String(),
		Status: string(job.StatusPending),
	})
}

// DeleteByDescription handles DELETE /api/tasks/by-description requests. It
// matches the user's tasks against a free-form description and deletes every
// match; a description matching nothing deletes nothing.
func (h *TaskHandler) DeleteByDescription(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req DeleteByDescriptionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.tasks.DeleteByDescription(r.Context(), userID, req.Description)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteByDescriptionResponse{
		Deleted: len(result.Tasks),
		Tasks:   tasksToResponse(result.Tasks),
		Source:  string(result.Source),
	})
}

// DeleteDay handles POST /api/tasks/delete/day requests.
func (h *TaskHandler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	h.deleteRange(w, r, h.tasks.DeleteDay)
}

// DeleteWeek handles POST /api/tasks/delete/week requests.
func (h *TaskHandler) DeleteWeek(w http.ResponseWriter, r *http.Request) {
	h.deleteRange(w, r, h.tasks.DeleteWeek)
}

// DeleteMonth handles POST /api/tasks/delete/month requests.
func (h *TaskHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	h.deleteRange(w, r, h.tasks.DeleteMonth)
}

// Reminders handles GET /api/tasks/reminders requests, listing tasks with a
// reminder currently due. It never marks reminders as sent.
func (h *TaskHandler) Reminders(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	tasks, err := h.reminders.Pending(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

// Upcoming handles GET /api/tasks/upcoming requests. The window defaults to
// 24 hours and can be overridden with the "hours" query parameter.
func (h *TaskHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	hours := defaultUpcomingHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 24*7 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid hours parameter")
			return
		}
		hours = parsed
	}

	tasks, err := h.tasks.Upcoming(r.Context(), userID, time.Duration(hours)*time.Hour)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, tasksToResponse(tasks))
}

func (h *TaskHandler) decodeParseRequest(w http.ResponseWriter, r *http.Request) (ParseTextRequest, bool) {
	var req ParseTextRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return req, false
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return req, false
	}
	return req, true
}

type deleteRangeFunc func(ctx context.Context, userID uuid.UUID, ref time.Time) (int64, error)

func (h *TaskHandler) deleteRange(w http.ResponseWriter, r *http.Request, fn deleteRangeFunc) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	ref, err := parseDateParam(r)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid date parameter")
		return
	}

	deleted, err := fn(r.Context(), userID, ref)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeletedResponse{Deleted: deleted})
}

// parseDateParam reads the optional "date" query parameter, accepting a
// plain date or an RFC 3339 timestamp. Missing means now.
func parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

// requireUserID extracts the authenticated user ID set by the auth
// middleware, writing a 401 response when it is absent.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return uuid.Nil, false
	}
	return userID, true
}

// requireTaskID parses the {id} URL parameter.
func requireTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return uuid.Nil, false
	}
	return taskID, true
}

func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/domain"
	"github.com/smarttime/smarttime-api/internal/job"
)

// RecurrenceRulePayload carries a recurrence rule in requests and responses.
// Weekday indices run 0 (Monday) to 6 (Sunday).
type RecurrenceRulePayload struct {
	Frequency  string     `json:"frequency"   validate:"required,oneof=daily weekly monthly yearly"`
	Interval   int        `json:"interval"    validate:"omitempty,min=1,max=365"`
	DaysOfWeek []int      `json:"days_of_week,omitempty"`
	DayOfMonth *int       `json:"day_of_month,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	Count      *int       `json:"count,omitempty"   validate:"omitempty,min=1"`
}

func (p *RecurrenceRulePayload) toDomain() *domain.RecurrenceRule {
	if p == nil {
		return nil
	}
	interval := p.Interval
	if interval == 0 {
		interval = 1
	}
	return &domain.RecurrenceRule{
		Frequency:  domain.Frequency(p.Frequency),
		Interval:   interval,
		DaysOfWeek: p.DaysOfWeek,
		DayOfMonth: p.DayOfMonth,
		EndDate:    p.EndDate,
		Count:      p.Count,
	}
}

// CreateTaskRequest represents the request body for creating a task.
type CreateTaskRequest struct {
	Title          string                 `json:"title"           validate:"required,max=200"`
	Start          time.Time              `json:"start"           validate:"required"`
	End            *time.Time             `json:"end,omitempty"`
	Priority       string                 `json:"priority"        validate:"omitempty,oneof=low medium high"`
	RecurrenceRule *RecurrenceRulePayload `json:"recurrence_rule,omitempty"`
	ReminderOffset string                 `json:"reminder_offset" validate:"omitempty,oneof=none at_time before_5min before_15min before_30min before_1hour before_1day"`
	IsImportant    bool                   `json:"is_important"`
}

// toTask materializes the request as a validated domain task.
func (req *CreateTaskRequest) toTask(userID uuid.UUID) (*domain.Task, error) {
	task, err := domain.NewTask(userID, req.Title, req.Start, req.End)
	if err != nil {
		return nil, err
	}

	if req.Priority != "" {
		task.Priority = domain.Priority(req.Priority)
	}
	if req.ReminderOffset != "" {
		task.ReminderOffset = domain.ReminderOffset(req.ReminderOffset)
	}
	task.IsImportant = req.IsImportant
	if req.RecurrenceRule != nil {
		task.RecurrenceRule = req.RecurrenceRule.toDomain()
		task.IsRecurring = true
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateTaskRequest represents the request body for updating a task.
// Recurrence cannot be changed after creation; delete and recreate instead.
type UpdateTaskRequest struct {
	Title          string     `json:"title"           validate:"required,max=200"`
	Start          time.Time  `json:"start"           validate:"required"`
	End            *time.Time `json:"end,omitempty"`
	Priority       string     `json:"priority"        validate:"omitempty,oneof=low medium high"`
	ReminderOffset string     `json:"reminder_offset" validate:"omitempty,oneof=none at_time before_5min before_15min before_30min before_1hour before_1day"`
	IsImportant    bool       `json:"is_important"`
}

// ParseTextRequest represents the request body for text extraction.
type ParseTextRequest struct {
	Text string `json:"text" validate:"required,min=1"`
}

// DeleteByDescriptionRequest represents the request body for deleting tasks
// that match a free-form description.
type DeleteByDescriptionRequest struct {
	Description string `json:"description" validate:"required,min=1"`
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"user_id"`
	Title          string                 `json:"title"`
	Start          time.Time              `json:"start"`
	End            *time.Time             `json:"end,omitempty"`
	Priority       string                 `json:"priority"`
	RecurrenceRule *domain.RecurrenceRule `json:"recurrence_rule,omitempty"`
	IsRecurring    bool                   `json:"is_recurring"`
	ParentTaskID   *string                `json:"parent_task_id,omitempty"`
	ReminderOffset string                 `json:"reminder_offset"`
	IsImportant    bool                   `json:"is_important"`
	ReminderSent   bool                   `json:"reminder_sent"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

func taskToResponse(task *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:             task.ID.String(),
		UserID:         task.UserID.String(),
		Title:          task.Title,
		Start:          task.Start,
		End:            task.End,
		Priority:       string(task.Priority),
		RecurrenceRule: task.RecurrenceRule,
		IsRecurring:    task.IsRecurring,
		ReminderOffset: string(task.ReminderOffset),
		IsImportant:    task.IsImportant,
		ReminderSent:   task.ReminderSent,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
	if task.ParentTaskID != nil {
		parent := task.ParentTaskID.String()
		resp.ParentTaskID = &parent
	}
	return resp
}

func tasksToResponse(tasks []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	return out
}

// ParseTextResponse represents the outcome of creating tasks from free text.
// Source is "model" when the language model produced the draft and
// "fallback" when keyword parsing did.
type ParseTextResponse struct {
	Tasks  []TaskResponse `json:"tasks"`
	Source string         `json:"source"`
}

// DeletedResponse reports how many tasks a bulk delete removed.
type DeletedResponse struct {
	Deleted int64 `json:"deleted"`
}

// DeleteByDescriptionResponse lists the tasks a description-driven delete
// removed. Source is "model" when the language model matched them and
// "fallback" when keyword matching did.
type DeleteByDescriptionResponse struct {
	Deleted int            `json:"deleted"`
	Tasks   []TaskResponse `json:"tasks"`
	Source  string         `json:"source"`
}

// JobResponse represents an asynchronous job in API responses. StartedAt and
// CompletedAt are absent until the job reaches those stages.
type JobResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Result      any        `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func jobToResponse(j job.Job) JobResponse {
	return JobResponse{
		ID:          j.ID.String(),
		Status:      string(j.Status),
		Result:      j.Result,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt,
		StartedAt:   j.StartedAt,
		CompletedAt: j.CompletedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// JobSubmittedResponse acknowledges an accepted asynchronous job.
type JobSubmittedResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// AnalyzeScheduleRequest represents the request body for slot analysis.
type AnalyzeScheduleRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"    validate:"required"`
	DurationHours float64    `json:"duration_hours" validate:"required,gt=0,lte=24"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Priority      string     `json:"priority"       validate:"omitempty,oneof=low medium high"`
	Preferences   []string   `json:"preferences,omitempty"`
}

func (req *AnalyzeScheduleRequest) toWorkRequest() *domain.WorkRequest {
	priority := domain.PriorityMedium
	if req.Priority != "" {
		priority = domain.Priority(req.Priority)
	}
	title := req.Title
	if title == "" {
		title = req.Description
	}
	return &domain.WorkRequest{
		Title:         title,
		Description:   req.Description,
		DurationHours: req.DurationHours,
		Deadline:      req.Deadline,
		Priority:      priority,
		Preferences:   req.Preferences,
	}
}

// TimeSlotPayload carries a recommended slot in requests and responses.
type TimeSlotPayload struct {
	Start  time.Time `json:"start"  validate:"required"`
	End    time.Time `json:"end"    validate:"required"`
	Score  int       `json:"score"  validate:"required,min=1,max=10"`
	Reason string    `json:"reason"`
}

func slotToPayload(slot domain.TimeSlot) TimeSlotPayload {
	return TimeSlotPayload{
		Start:  slot.Start,
		End:    slot.End,
		Score:  slot.Score,
		Reason: slot.Reason,
	}
}

func (p *TimeSlotPayload) toDomain() domain.TimeSlot {
	return domain.TimeSlot{
		Start:  p.Start,
		End:    p.End,
		Score:  p.Score,
		Reason: p.Reason,
	}
}

// AnalyzeScheduleResponse lists the recommended slots for a work request.
type AnalyzeScheduleResponse struct {
	Slots []TimeSlotPayload `json:"slots"`
}

// ConfirmScheduleRequest books one of the previously recommended slots.
type ConfirmScheduleRequest struct {
	Request AnalyzeScheduleRequest `json:"request" validate:"required"`
	Slot    TimeSlotPayload        `json:"slot"    validate:"required"`
}

package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/smarttime/smarttime-api/internal/api/shared"
	"github.com/smarttime/smarttime-api/internal/service"
)

// ScheduleHandler handles schedule recommendation HTTP requests.
type ScheduleHandler struct {
	schedule  *service.ScheduleService
	validator *validator.Validate
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		schedule:  schedule,
		validator: validator.New(),
	}
}

// Analyze handles POST /api/schedule/analyze requests, returning scored
// candidate slots for the described work.
func (h *ScheduleHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req AnalyzeScheduleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	slots, err := h.schedule.Analyze(r.Context(), userID, req.toWorkRequest())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	resp := AnalyzeScheduleResponse{Slots: make([]TimeSlotPayload, 0, len(slots))}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, slotToPayload(slot))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Confirm handles POST /api/schedule/confirm requests, booking one of the
// recommended slots as a task. Returns 409 when the slot was taken in the
// meantime.
func (h *ScheduleHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ConfirmScheduleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.schedule.Confirm(r.Context(), userID, req.Request.toWorkRequest(), req.Slot.toDomain())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToResponse(task))
}

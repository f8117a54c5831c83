package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smarttime/smarttime-api/internal/api/shared"
	"github.com/smarttime/smarttime-api/internal/job"
)

// JobHandler exposes the status of asynchronous jobs.
type JobHandler struct {
	queue *job.Queue
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(queue *job.Queue) *JobHandler {
	return &JobHandler{queue: queue}
}

// GetJob handles GET /api/jobs/{id} requests.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUserID(w, r); !ok {
		return
	}

	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}

	j, ok := h.queue.Lookup(jobID)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Job not found")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(j))
}

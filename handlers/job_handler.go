package handlers

import (
	"net/http"

	"github.com/Dosada05/team-manager/services"
	"github.com/go-chi/chi/v5"
)

type JobHandler struct {
	jobService services.JobService
}

func NewJobHandler(js services.JobService) *JobHandler {
	return &JobHandler{
		jobService: js,
	}
}

// ListJobs godoc
// @Summary Поиск фоновых задач
// @Tags jobs
// @Produce json
// @Param jobType query string false "Job type, e.g. recalc-minutes"
// @Param gameId query int false "Game ID from the payload"
// @Param status query string false "pending | processing | done | failed"
// @Param limit query int false "Max results (default 50)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Неверный фильтр"
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jobs, err := h.jobService.List(r.Context(), services.JobQuery{
		JobType: q.Get("jobType"),
		GameID:  q.Get("gameId"),
		Status:  q.Get("status"),
		Limit:   q.Get("limit"),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"jobs": jobs}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"job": job}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

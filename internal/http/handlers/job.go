package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/http/response"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/services"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

// GET /api/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	f := repos.JobFilter{
		Press:        c.Query("press"),
		WithTimeline: c.Query("withTimeline") == "true",
	}
	if raw := c.Query("status"); raw != "" {
		status, ok := parseStatus(raw)
		if !ok {
			response.RespondError(c, http.StatusBadRequest, "invalid_status",
				fmt.Errorf("unknown status %q", raw))
			return
		}
		f.Status = status
	}
	if raw := queryAlias(c, "from", "startDate"); raw != "" {
		from, _, err := parseDateBound(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		f.CreatedFrom = &from
	}
	if raw := queryAlias(c, "to", "endDate"); raw != "" {
		to, dateOnly, err := parseDateBound(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_date", err)
			return
		}
		if dateOnly {
			// A date-only upper bound is inclusive of that whole day.
			to = to.Add(24 * time.Hour)
		}
		f.CreatedTo = &to
	}

	jobs, err := h.jobs.List(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"jobs": jobs})
}

// POST /api/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req struct {
		OrderCode       string `json:"ot"`
		Client          string `json:"client"`
		JobType         string `json:"jobType"`
		QuantityPlanned int    `json:"quantityPlanned"`
		Press           string `json:"press"`
		Priority        *int   `json:"priority"`
		Pantone         bool   `json:"pantone"`
		Varnish         bool   `json:"varnish"`
		ColorMode       string `json:"colorMode"`
		Comments        string `json:"comments"`
		MachineSpeed    string `json:"machineSpeed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), services.CreateJobInput{
		OrderCode:          req.OrderCode,
		Client:             req.Client,
		JobType:            req.JobType,
		QuantityPlanned:    req.QuantityPlanned,
		Press:              req.Press,
		Priority:           req.Priority,
		Pantone:            req.Pantone,
		Varnish:            req.Varnish,
		ColorMode:          domain.ColorMode(req.ColorMode),
		SupervisorComments: req.Comments,
		MachineSpeed:       req.MachineSpeed,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"job": job})
}

// GET /api/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// PATCH /api/jobs/:id
func (h *JobHandler) UpdateJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	var req struct {
		Client           *string `json:"client"`
		JobType          *string `json:"jobType"`
		QuantityPlanned  *int    `json:"quantityPlanned"`
		Press            *string `json:"press"`
		Priority         *int    `json:"priority"`
		Pantone          *bool   `json:"pantone"`
		Varnish          *bool   `json:"varnish"`
		ColorMode        *string `json:"colorMode"`
		Comments         *string `json:"comments"`
		OperatorComments *string `json:"operatorComments"`
		MachineSpeed     *string `json:"machineSpeed"`
		IsCancelled      *bool   `json:"isCancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	in := services.UpdateJobInput{
		Client:             req.Client,
		JobType:            req.JobType,
		QuantityPlanned:    req.QuantityPlanned,
		Press:              req.Press,
		Priority:           req.Priority,
		Pantone:            req.Pantone,
		Varnish:            req.Varnish,
		SupervisorComments: req.Comments,
		OperatorComments:   req.OperatorComments,
		MachineSpeed:       req.MachineSpeed,
		IsCancelled:        req.IsCancelled,
	}
	if req.ColorMode != nil {
		m := domain.ColorMode(*req.ColorMode)
		in.ColorMode = &m
	}
	job, err := h.jobs.Update(c.Request.Context(), jobID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// POST /api/jobs/:id/start
func (h *JobHandler) StartJob(c *gin.Context) {
	h.action(c, h.jobs.Start)
}

// POST /api/jobs/:id/pause
func (h *JobHandler) PauseJob(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	var req struct {
		Cause string `json:"cause"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	job, err := h.jobs.Pause(c.Request.Context(), jobID, req.Cause)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// POST /api/jobs/:id/general-pause
func (h *JobHandler) GeneralPauseJob(c *gin.Context) {
	h.action(c, h.jobs.GeneralPause)
}

// POST /api/jobs/:id/resume
func (h *JobHandler) ResumeJob(c *gin.Context) {
	h.action(c, h.jobs.Resume)
}

// POST /api/jobs/:id/finish
func (h *JobHandler) FinishJob(c *gin.Context) {
	h.action(c, h.jobs.Finish)
}

// POST /api/jobs/:id/cancel
func (h *JobHandler) CancelJob(c *gin.Context) {
	h.action(c, h.jobs.Cancel)
}

// POST /api/jobs/:id/reestablish
func (h *JobHandler) ReestablishJob(c *gin.Context) {
	h.action(c, h.jobs.Reestablish)
}

// POST /api/jobs/:id/setup/start
func (h *JobHandler) BeginSetup(c *gin.Context) {
	h.action(c, h.jobs.BeginSetup)
}

// POST /api/jobs/:id/setup/end
func (h *JobHandler) EndSetup(c *gin.Context) {
	h.action(c, h.jobs.EndSetup)
}

// GET /api/jobs/:id/times
func (h *JobHandler) GetTimes(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, times, err := h.jobs.DerivedTimes(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"jobId":  job.ID,
		"status": job.Status,
		"times":  times,
	})
}

// GET /api/jobs/:id/timeline
func (h *JobHandler) GetTimeline(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := h.jobs.GetByID(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"timeline": job.Timeline})
}

// POST /api/jobs/:id/timeline
func (h *JobHandler) AppendTimeline(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	var req struct {
		Type      string     `json:"type"`
		Cause     string     `json:"cause"`
		Timestamp *time.Time `json:"timestamp"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	at := time.Time{}
	if req.Timestamp != nil {
		at = *req.Timestamp
	}
	job, err := h.jobs.AppendEvent(c.Request.Context(), jobID, domain.EventType(req.Type), req.Cause, at)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

func (h *JobHandler) action(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*domain.Job, error)) {
	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_job_id", err)
		return
	}
	job, err := fn(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// queryAlias reads a query param under its current name, falling back to the
// legacy dashboard spelling.
func queryAlias(c *gin.Context, name, legacy string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.Query(legacy)
}

// parseDateBound accepts RFC3339 or a bare date. The second return reports
// the bare-date case so "to" bounds can be made inclusive.
func parseDateBound(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("unparseable date %q", raw)
}

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/impresia/tiraje-backend/internal/http/response"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/services"
)

type ReportHandler struct {
	reports services.ReportService
}

func NewReportHandler(reports services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GET /api/report
func (h *ReportHandler) GetReport(c *gin.Context) {
	f := repos.JobFilter{Press: c.Query("press")}
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
			to = to.Add(24 * time.Hour)
		}
		f.CreatedTo = &to
	}

	rows, err := h.reports.Rows(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"rows": rows})
}

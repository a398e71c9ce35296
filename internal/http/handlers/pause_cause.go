package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/impresia/tiraje-backend/internal/http/response"
	"github.com/impresia/tiraje-backend/internal/services"
)

type PauseCauseHandler struct {
	pauseCauses services.PauseCauseService
}

func NewPauseCauseHandler(pauseCauses services.PauseCauseService) *PauseCauseHandler {
	return &PauseCauseHandler{pauseCauses: pauseCauses}
}

// GET /api/pause-causes
func (h *PauseCauseHandler) ListPauseCauses(c *gin.Context) {
	causes, err := h.pauseCauses.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"pauseCauses": causes})
}

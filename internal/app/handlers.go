package app

import (
	"github.com/impresia/tiraje-backend/internal/http/handlers"
	"github.com/impresia/tiraje-backend/internal/http/middleware"
	"github.com/impresia/tiraje-backend/internal/logger"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Job        *handlers.JobHandler
	PauseCause *handlers.PauseCauseHandler
	Report     *handlers.ReportHandler
	Health     *handlers.HealthHandler
}

func wireHandlers(s Services) Handlers {
	return Handlers{
		Auth:       handlers.NewAuthHandler(s.Auth),
		Job:        handlers.NewJobHandler(s.Job),
		PauseCause: handlers.NewPauseCauseHandler(s.PauseCause),
		Report:     handlers.NewReportHandler(s.Report),
		Health:     handlers.NewHealthHandler(),
	}
}

func wireMiddleware(log *logger.Logger, s Services) *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(log, s.Auth)
}

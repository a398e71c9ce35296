package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/impresia/tiraje-backend/internal/http/handlers"
	httpMW "github.com/impresia/tiraje-backend/internal/http/middleware"
	"github.com/impresia/tiraje-backend/internal/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	JobHandler        *httpH.JobHandler
	PauseCauseHandler *httpH.PauseCauseHandler
	ReportHandler     *httpH.ReportHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.JobHandler != nil {
			protected.GET("/jobs", cfg.JobHandler.ListJobs)
			protected.GET("/jobs/:id", cfg.JobHandler.GetJob)
			protected.GET("/jobs/:id/times", cfg.JobHandler.GetTimes)
			protected.GET("/jobs/:id/timeline", cfg.JobHandler.GetTimeline)
			protected.POST("/jobs/:id/timeline", cfg.JobHandler.AppendTimeline)

			// Floor actions: any authenticated role.
			protected.POST("/jobs/:id/start", cfg.JobHandler.StartJob)
			protected.POST("/jobs/:id/pause", cfg.JobHandler.PauseJob)
			protected.POST("/jobs/:id/general-pause", cfg.JobHandler.GeneralPauseJob)
			protected.POST("/jobs/:id/resume", cfg.JobHandler.ResumeJob)
			protected.POST("/jobs/:id/finish", cfg.JobHandler.FinishJob)
			protected.POST("/jobs/:id/setup/start", cfg.JobHandler.BeginSetup)
			protected.POST("/jobs/:id/setup/end", cfg.JobHandler.EndSetup)
		}

		if cfg.PauseCauseHandler != nil {
			protected.GET("/pause-causes", cfg.PauseCauseHandler.ListPauseCauses)
		}

		// Planning surfaces: supervisors and admins only.
		if cfg.AuthMiddleware != nil {
			planning := protected.Group("/")
			planning.Use(cfg.AuthMiddleware.RequireRole("supervisor", "admin"))
			if cfg.JobHandler != nil {
				planning.POST("/jobs", cfg.JobHandler.CreateJob)
				planning.PATCH("/jobs/:id", cfg.JobHandler.UpdateJob)
				planning.POST("/jobs/:id/cancel", cfg.JobHandler.CancelJob)
				// DELETE is the legacy spelling of cancel; jobs are never
				// hard-deleted.
				planning.DELETE("/jobs/:id", cfg.JobHandler.CancelJob)
				planning.POST("/jobs/:id/reestablish", cfg.JobHandler.ReestablishJob)
			}
			if cfg.ReportHandler != nil {
				planning.GET("/reports/jobs", cfg.ReportHandler.GetReport)
			}
		}
	}

	return r
}

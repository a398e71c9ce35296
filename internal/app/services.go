package app

import (
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/catalog"
	redisclient "github.com/impresia/tiraje-backend/internal/clients/redis"
	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Job        services.JobService
	PauseCause services.PauseCauseService
	Report     services.ReportService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, cat catalog.Catalog, r Repos) Services {
	log.Info("Wiring services...")

	// Redis is optional; the pause-cause list falls back to postgres reads.
	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, pause causes served from postgres", "error", err)
		cache = nil
	}

	return Services{
		Auth: services.NewAuthService(
			db, log, r.User, r.UserToken,
			cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
		),
		Job:        services.NewJobService(db, log, r.Job, r.TimelineEvent, cat),
		PauseCause: services.NewPauseCauseService(log, r.PauseCause, cache),
		Report:     services.NewReportService(log, r.Job),
	}
}

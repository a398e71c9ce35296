package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/catalog"
	"github.com/impresia/tiraje-backend/internal/db"
	httpserver "github.com/impresia/tiraje-backend/internal/http"
	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/tracing"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Catalog  catalog.Catalog
	Repos    Repos
	Services Services
	Server   *httpserver.Server

	otelShutdown func(context.Context) error
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	log.Info("Catalog loaded", "presses", len(cat.Presses), "pause_causes", len(cat.PauseCauses))

	otelShutdown := tracing.Init(context.Background(), log, tracing.Config{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, cat, reposet)
	handlerset := wireHandlers(serviceset)
	authMW := wireMiddleware(log, serviceset)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := serviceset.PauseCause.SeedFromCatalog(seedCtx, cat); err != nil {
		log.Warn("Pause cause seed failed", "error", err)
	}

	server := httpserver.NewServer(httpserver.RouterConfig{
		Log:               log,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		AuthHandler:       handlerset.Auth,
		AuthMiddleware:    authMW,
		JobHandler:        handlerset.Job,
		PauseCauseHandler: handlerset.PauseCause,
		ReportHandler:     handlerset.Report,
		HealthHandler:     handlerset.Health,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Catalog:      cat,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(addr)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var firstErr error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return firstErr
}

package app

import (
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/repos"
)

type Repos struct {
	User          repos.UserRepo
	UserToken     repos.UserTokenRepo
	Job           repos.JobRepo
	TimelineEvent repos.TimelineEventRepo
	PauseCause    repos.PauseCauseRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		UserToken:     repos.NewUserTokenRepo(db, log),
		Job:           repos.NewJobRepo(db, log),
		TimelineEvent: repos.NewTimelineEventRepo(db, log),
		PauseCause:    repos.NewPauseCauseRepo(db, log),
	}
}

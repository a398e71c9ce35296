package repos

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/logger"
)

type PauseCauseRepo interface {
	List(ctx context.Context, tx *gorm.DB) ([]domain.PauseCause, error)
	// Seed inserts the catalog vocabulary, updating labels for codes that
	// already exist.
	Seed(ctx context.Context, tx *gorm.DB, causes []domain.PauseCause) error
}

type pauseCauseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPauseCauseRepo(db *gorm.DB, baseLog *logger.Logger) PauseCauseRepo {
	return &pauseCauseRepo{db: db, log: baseLog.With("repo", "PauseCauseRepo")}
}

func (r *pauseCauseRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *pauseCauseRepo) List(ctx context.Context, tx *gorm.DB) ([]domain.PauseCause, error) {
	var out []domain.PauseCause
	if err := r.conn(tx).WithContext(ctx).Order("code ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *pauseCauseRepo) Seed(ctx context.Context, tx *gorm.DB, causes []domain.PauseCause) error {
	if len(causes) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"label"}),
		}).
		Create(&causes).Error
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/logger"
)

// TimelineEventRepo is append-only on purpose: events are immutable facts and
// there is no update or delete path.
type TimelineEventRepo interface {
	Append(ctx context.Context, tx *gorm.DB, events []*domain.TimelineEvent) ([]*domain.TimelineEvent, error)
	ListByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]domain.TimelineEvent, error)
}

type timelineEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTimelineEventRepo(db *gorm.DB, baseLog *logger.Logger) TimelineEventRepo {
	return &timelineEventRepo{db: db, log: baseLog.With("repo", "TimelineEventRepo")}
}

func (r *timelineEventRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *timelineEventRepo) Append(ctx context.Context, tx *gorm.DB, events []*domain.TimelineEvent) ([]*domain.TimelineEvent, error) {
	if len(events) == 0 {
		return []*domain.TimelineEvent{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (r *timelineEventRepo) ListByJobID(ctx context.Context, tx *gorm.DB, jobID uuid.UUID) ([]domain.TimelineEvent, error) {
	var out []domain.TimelineEvent
	if jobID == uuid.Nil {
		return out, nil
	}
	err := r.conn(tx).WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("timestamp ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

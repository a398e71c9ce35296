package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/logger"
)

// JobFilter narrows List. Zero values mean "no filter".
type JobFilter struct {
	Press       string
	Status      domain.JobStatus
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	WithTimeline bool
}

type JobRepo interface {
	Create(ctx context.Context, tx *gorm.DB, jobs []*domain.Job) ([]*domain.Job, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, tx *gorm.DB, f JobFilter) ([]*domain.Job, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// UpdateFieldsIfStatus applies updates only while the row still holds one
	// of the expected statuses. The guarded write is the atomic
	// read-modify-write every transition relies on: false means the job moved
	// underneath the caller and the action must be retried from fresh state.
	UpdateFieldsIfStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected []domain.JobStatus, updates map[string]interface{}) (bool, error)
	// CountLiveOnPress counts in_progress/paused jobs on a press, optionally
	// excluding one job id.
	CountLiveOnPress(ctx context.Context, tx *gorm.DB, press string, exclude uuid.UUID) (int64, error)
	NextPriority(ctx context.Context, tx *gorm.DB, press string) (int, error)
}

type jobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJobRepo(db *gorm.DB, baseLog *logger.Logger) JobRepo {
	return &jobRepo{db: db, log: baseLog.With("repo", "JobRepo")}
}

func (r *jobRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *jobRepo) Create(ctx context.Context, tx *gorm.DB, jobs []*domain.Job) ([]*domain.Job, error) {
	if len(jobs) == 0 {
		return []*domain.Job{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).Create(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *jobRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Job, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var job domain.Job
	err := r.conn(tx).WithContext(ctx).
		Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		}).
		Where("id = ?", id).
		Limit(1).
		Find(&job).Error
	if err != nil {
		return nil, err
	}
	if job.ID == uuid.Nil {
		return nil, nil
	}
	return &job, nil
}

func (r *jobRepo) List(ctx context.Context, tx *gorm.DB, f JobFilter) ([]*domain.Job, error) {
	q := r.conn(tx).WithContext(ctx).Model(&domain.Job{})
	if f.Press != "" {
		q = q.Where("press = ?", f.Press)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at < ?", *f.CreatedTo)
	}
	if f.WithTimeline {
		q = q.Preload("Timeline", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		})
	}
	var out []*domain.Job
	if err := q.Order("priority ASC, created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *jobRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return r.conn(tx).WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *jobRepo) UpdateFieldsIfStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, expected []domain.JobStatus, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil {
		return false, nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	q := r.conn(tx).WithContext(ctx).
		Model(&domain.Job{}).
		Where("id = ?", id)
	if len(expected) == 1 {
		q = q.Where("status = ?", expected[0])
	} else if len(expected) > 1 {
		q = q.Where("status IN ?", expected)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *jobRepo) CountLiveOnPress(ctx context.Context, tx *gorm.DB, press string, exclude uuid.UUID) (int64, error) {
	if press == "" {
		return 0, nil
	}
	q := r.conn(tx).WithContext(ctx).
		Model(&domain.Job{}).
		Where("press = ? AND status IN ?", press,
			[]domain.JobStatus{domain.StatusInProgress, domain.StatusPaused})
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *jobRepo) NextPriority(ctx context.Context, tx *gorm.DB, press string) (int, error) {
	var max *int
	err := r.conn(tx).WithContext(ctx).
		Model(&domain.Job{}).
		Where("press = ? AND status = ?", press, domain.StatusQueued).
		Select("MAX(priority)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

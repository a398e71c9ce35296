package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/catalog"
	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/engine"
	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/requestdata"
	"github.com/impresia/tiraje-backend/internal/timecalc"
)

type CreateJobInput struct {
	OrderCode          string
	Client             string
	JobType            string
	QuantityPlanned    int
	Press              string
	Priority           *int
	Pantone            bool
	Varnish            bool
	ColorMode          domain.ColorMode
	SupervisorComments string
	MachineSpeed       string
}

// UpdateJobInput carries a sparse PATCH. Nil means "leave the field alone".
// Status is deliberately absent: lifecycle moves only happen through the
// action methods, with IsCancelled as the one flag routed to cancel or
// reestablish.
type UpdateJobInput struct {
	Client             *string
	JobType            *string
	QuantityPlanned    *int
	Press              *string
	Priority           *int
	Pantone            *bool
	Varnish            *bool
	ColorMode          *domain.ColorMode
	SupervisorComments *string
	OperatorComments   *string
	MachineSpeed       *string
	IsCancelled        *bool
}

type JobService interface {
	Create(ctx context.Context, in CreateJobInput) (*domain.Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	List(ctx context.Context, f repos.JobFilter) ([]*domain.Job, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateJobInput) (*domain.Job, error)

	Start(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Pause(ctx context.Context, id uuid.UUID, cause string) (*domain.Job, error)
	GeneralPause(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Resume(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Finish(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Cancel(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	Reestablish(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	BeginSetup(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	EndSetup(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// AppendEvent is the raw timeline channel. The event is still routed
	// through the state machine; at zero time means "now".
	AppendEvent(ctx context.Context, id uuid.UUID, evType domain.EventType, cause string, at time.Time) (*domain.Job, error)
	DerivedTimes(ctx context.Context, id uuid.UUID) (*domain.Job, timecalc.DerivedTimes, error)
}

type jobService struct {
	db        *gorm.DB
	log       *logger.Logger
	jobRepo   repos.JobRepo
	eventRepo repos.TimelineEventRepo
	catalog   catalog.Catalog
}

func NewJobService(
	db *gorm.DB,
	log *logger.Logger,
	jobRepo repos.JobRepo,
	eventRepo repos.TimelineEventRepo,
	cat catalog.Catalog,
) JobService {
	return &jobService{
		db:        db,
		log:       log.With("service", "JobService"),
		jobRepo:   jobRepo,
		eventRepo: eventRepo,
		catalog:   cat,
	}
}

func (js *jobService) Create(ctx context.Context, in CreateJobInput) (*domain.Job, error) {
	in.OrderCode = strings.TrimSpace(in.OrderCode)
	in.Client = strings.TrimSpace(in.Client)
	if in.OrderCode == "" || in.Client == "" {
		return nil, fmt.Errorf("ot and client are required")
	}
	if !js.catalog.HasPress(in.Press) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPress, in.Press)
	}
	if in.ColorMode == "" {
		in.ColorMode = domain.ColorNone
	}
	if !in.ColorMode.Valid() {
		return nil, fmt.Errorf("unknown color mode %q", in.ColorMode)
	}

	job := &domain.Job{
		ID:                 uuid.New(),
		OrderCode:          in.OrderCode,
		Client:             in.Client,
		JobType:            strings.TrimSpace(in.JobType),
		QuantityPlanned:    in.QuantityPlanned,
		Press:              in.Press,
		Status:             domain.StatusQueued,
		Pantone:            in.Pantone,
		Varnish:            in.Varnish,
		ColorMode:          in.ColorMode,
		SupervisorComments: in.SupervisorComments,
		MachineSpeed:       strings.TrimSpace(in.MachineSpeed),
	}

	err := js.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.Priority != nil {
			job.Priority = *in.Priority
		} else {
			next, npErr := js.jobRepo.NextPriority(ctx, tx, job.Press)
			if npErr != nil {
				return fmt.Errorf("failed to compute next priority: %w", npErr)
			}
			job.Priority = next
		}
		if _, cErr := js.jobRepo.Create(ctx, tx, []*domain.Job{job}); cErr != nil {
			if strings.Contains(cErr.Error(), "duplicate key") {
				return fmt.Errorf("%w: %s", ErrDuplicateOrder, job.OrderCode)
			}
			return fmt.Errorf("failed to create job: %w", cErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	js.log.Info("Job created", "job_id", job.ID.String(), "ot", job.OrderCode, "press", job.Press)
	return job, nil
}

func (js *jobService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := js.jobRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (js *jobService) List(ctx context.Context, f repos.JobFilter) ([]*domain.Job, error) {
	jobs, err := js.jobRepo.List(ctx, nil, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (js *jobService) Update(ctx context.Context, id uuid.UUID, in UpdateJobInput) (*domain.Job, error) {
	var out *domain.Job
	err := js.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := js.jobRepo.GetByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to load job: %w", err)
		}
		if job == nil {
			return ErrJobNotFound
		}

		updates := map[string]interface{}{}

		// The isCancelled flag is the one status-bearing field PATCH accepts,
		// routed through the engine like any other transition.
		if in.IsCancelled != nil && *in.IsCancelled != job.IsCancelled {
			var tr engine.Transition
			var tErr error
			if *in.IsCancelled {
				tr, tErr = engine.Cancel(job)
			} else {
				tr, tErr = engine.Reestablish(job)
			}
			if tErr != nil {
				return tErr
			}
			updates["status"] = tr.Status
			updates["is_cancelled"] = *tr.IsCancelled
		} else if job.Status == domain.StatusFinished || job.Status == domain.StatusCancelled {
			return engine.ErrImmutableFinished
		}

		if in.Press != nil && *in.Press != job.Press {
			if !js.catalog.HasPress(*in.Press) {
				return fmt.Errorf("%w: %q", ErrUnknownPress, *in.Press)
			}
			liveCount, lErr := js.jobRepo.CountLiveOnPress(ctx, tx, *in.Press, job.ID)
			if lErr != nil {
				return fmt.Errorf("failed to check target press: %w", lErr)
			}
			if vErr := engine.ValidateMove(job, liveCount > 0); vErr != nil {
				return vErr
			}
			updates["press"] = *in.Press
			if in.Priority == nil {
				// A moved job joins the tail of the destination queue.
				next, npErr := js.jobRepo.NextPriority(ctx, tx, *in.Press)
				if npErr != nil {
					return fmt.Errorf("failed to compute next priority: %w", npErr)
				}
				updates["priority"] = next
			}
		}
		if in.Priority != nil && *in.Priority != job.Priority {
			if vErr := engine.ValidateReorder(job); vErr != nil {
				return vErr
			}
			updates["priority"] = *in.Priority
		}

		if in.Client != nil {
			updates["client"] = strings.TrimSpace(*in.Client)
		}
		if in.JobType != nil {
			updates["job_type"] = strings.TrimSpace(*in.JobType)
		}
		if in.QuantityPlanned != nil {
			updates["quantity_planned"] = *in.QuantityPlanned
		}
		if in.Pantone != nil {
			updates["pantone"] = *in.Pantone
		}
		if in.Varnish != nil {
			updates["varnish"] = *in.Varnish
		}
		if in.ColorMode != nil {
			if !in.ColorMode.Valid() {
				return fmt.Errorf("unknown color mode %q", *in.ColorMode)
			}
			updates["color_mode"] = *in.ColorMode
		}
		if in.SupervisorComments != nil {
			updates["supervisor_comments"] = *in.SupervisorComments
		}
		if in.OperatorComments != nil {
			updates["operator_comments"] = *in.OperatorComments
		}
		if in.MachineSpeed != nil {
			updates["machine_speed"] = strings.TrimSpace(*in.MachineSpeed)
		}

		if len(updates) == 0 {
			out = job
			return nil
		}

		ok, uErr := js.jobRepo.UpdateFieldsIfStatus(ctx, tx, job.ID, []domain.JobStatus{job.Status}, updates)
		if uErr != nil {
			return fmt.Errorf("failed to update job: %w", uErr)
		}
		if !ok {
			return engine.ErrInvalidTransition
		}
		fresh, fErr := js.jobRepo.GetByID(ctx, tx, job.ID)
		if fErr != nil {
			return fmt.Errorf("failed to reload job: %w", fErr)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (js *jobService) Start(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "start",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Start(job, pressLive, actor, now)
		})
}

func (js *jobService) Pause(ctx context.Context, id uuid.UUID, cause string) (*domain.Job, error) {
	cause = strings.TrimSpace(cause)
	if cause != "" && cause != domain.GeneralPauseCause && !js.catalog.HasPauseCause(cause) {
		js.log.Warn("Pause cause not in catalog", "cause", cause)
	}
	return js.applyTransition(ctx, id, "pause",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Pause(job, cause, actor, now)
		})
}

func (js *jobService) GeneralPause(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "general_pause",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.GeneralPause(job, actor, now)
		})
}

func (js *jobService) Resume(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "resume",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Resume(job, actor, now)
		})
}

func (js *jobService) Finish(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "finish",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Finish(job, actor, now)
		})
}

func (js *jobService) Cancel(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "cancel",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Cancel(job)
		})
}

func (js *jobService) Reestablish(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "reestablish",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.Reestablish(job)
		})
}

func (js *jobService) BeginSetup(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "begin_setup",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.BeginSetup(job, job.Timeline, actor, now)
		})
}

func (js *jobService) EndSetup(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return js.applyTransition(ctx, id, "end_setup",
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			return engine.EndSetup(job, job.Timeline, actor, now)
		})
}

func (js *jobService) AppendEvent(ctx context.Context, id uuid.UUID, evType domain.EventType, cause string, at time.Time) (*domain.Job, error) {
	if !evType.Valid() {
		return nil, fmt.Errorf("unknown event type %q", evType)
	}
	return js.applyTransition(ctx, id, "append_"+string(evType),
		func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error) {
			ts := at
			if ts.IsZero() {
				ts = now
			}
			// Timestamps are non-decreasing in insertion order; a backdated
			// event would corrupt interval matching for every later read.
			if n := len(job.Timeline); n > 0 && ts.Before(job.Timeline[n-1].Timestamp) {
				return engine.Transition{}, engine.ErrInvalidTransition
			}
			return engine.ApplyEvent(job, job.Timeline, evType, cause, pressLive, actor, ts)
		})
}

func (js *jobService) DerivedTimes(ctx context.Context, id uuid.UUID) (*domain.Job, timecalc.DerivedTimes, error) {
	job, err := js.GetByID(ctx, id)
	if err != nil {
		return nil, timecalc.DerivedTimes{}, err
	}
	return job, timecalc.ComputeForJob(job, time.Now().UTC()), nil
}

// applyTransition runs one lifecycle action atomically: re-read the job inside
// the transaction, ask the engine, append the event, and land the status via a
// guarded conditional update. A guard miss means another request moved the job
// first; the whole action is rejected rather than half-applied.
func (js *jobService) applyTransition(
	ctx context.Context,
	id uuid.UUID,
	action string,
	decide func(job *domain.Job, pressLive bool, actor engine.Actor, now time.Time) (engine.Transition, error),
) (*domain.Job, error) {
	actor := actorFrom(ctx)
	now := time.Now().UTC()

	var out *domain.Job
	err := js.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := js.jobRepo.GetByID(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to load job: %w", err)
		}
		if job == nil {
			return ErrJobNotFound
		}

		liveCount, lErr := js.jobRepo.CountLiveOnPress(ctx, tx, job.Press, job.ID)
		if lErr != nil {
			return fmt.Errorf("failed to check press occupancy: %w", lErr)
		}

		tr, dErr := decide(job, liveCount > 0, actor, now)
		if dErr != nil {
			return dErr
		}

		updates := map[string]interface{}{"status": tr.Status}
		if tr.FinishedAt != nil {
			updates["finished_at"] = *tr.FinishedAt
		}
		if tr.IsCancelled != nil {
			updates["is_cancelled"] = *tr.IsCancelled
		}
		if tr.StartedBy != nil && tr.StartedBy.ID != uuid.Nil {
			updates["started_by_id"] = tr.StartedBy.ID
			updates["started_by_name"] = tr.StartedBy.Name
		}

		if tr.Event != nil {
			timeline := make([]domain.TimelineEvent, 0, len(job.Timeline)+1)
			timeline = append(timeline, job.Timeline...)
			timeline = append(timeline, *tr.Event)
			d := timecalc.Compute(timeline, 0, tr.Event.Timestamp)
			updates["setup_count"] = d.SetupCount
			updates["total_setup_seconds"] = d.TotalSetupSeconds
			updates["pause_count"] = d.PauseCount
			updates["total_pause_seconds"] = persistedPauseSeconds(d, tr.Status == domain.StatusFinished)

			if _, aErr := js.eventRepo.Append(ctx, tx, []*domain.TimelineEvent{tr.Event}); aErr != nil {
				return fmt.Errorf("failed to append timeline event: %w", aErr)
			}
		}

		ok, uErr := js.jobRepo.UpdateFieldsIfStatus(ctx, tx, job.ID, []domain.JobStatus{job.Status}, updates)
		if uErr != nil {
			return fmt.Errorf("failed to persist transition: %w", uErr)
		}
		if !ok {
			js.log.Warn("Transition guard miss, job moved concurrently",
				"job_id", job.ID.String(), "action", action, "expected_status", string(job.Status))
			return engine.ErrInvalidTransition
		}

		fresh, fErr := js.jobRepo.GetByID(ctx, tx, job.ID)
		if fErr != nil {
			return fmt.Errorf("failed to reload job: %w", fErr)
		}
		out = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	js.log.Info("Job transition applied",
		"job_id", out.ID.String(), "action", action, "status", string(out.Status))
	return out, nil
}

// persistedPauseSeconds keeps the stored aggregate stable while a pause is
// running: only closed intervals are persisted until the job finishes, at
// which point a trailing open pause is counted through to the end boundary.
func persistedPauseSeconds(d timecalc.DerivedTimes, finished bool) int64 {
	if finished {
		return d.TotalPauseSeconds
	}
	var s int64
	for _, iv := range d.PauseIntervals {
		if iv.End != nil {
			s += iv.Seconds
		}
	}
	return s
}

func actorFrom(ctx context.Context) engine.Actor {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return engine.Actor{}
	}
	return engine.Actor{ID: rd.UserID, Name: rd.Name}
}

// Package engine owns the job lifecycle state machine. It is pure and
// synchronous: every function validates an intent against the current job
// record and either returns the Transition to persist or a typed error.
// The engine never touches storage; the service layer applies the returned
// transition atomically and remains the ultimate authority for the
// one-live-job-per-press invariant under concurrent requests.
package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/impresia/tiraje-backend/internal/domain"
)

// Actor identifies who triggered an action. Only production_start records it
// on the job itself ("who started this run").
type Actor struct {
	ID   uuid.UUID
	Name string
}

// Transition is the full effect of an accepted action: the new status, at
// most one timeline event to append, and the field updates to persist. No
// partial effect is ever exposed; a Transition either lands whole or not at
// all.
type Transition struct {
	Status      domain.JobStatus
	Event       *domain.TimelineEvent
	FinishedAt  *time.Time
	IsCancelled *bool
	StartedBy   *Actor
}

// Start moves a queued job into production. pressLive must report whether the
// job's press already hosts another in_progress or paused job.
func Start(job *domain.Job, pressLive bool, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusQueued {
		return Transition{}, ErrInvalidTransition
	}
	if pressLive {
		return Transition{}, ErrPressOccupied
	}
	ev := newEvent(job.ID, domain.EventProductionStart, now, nil, actor)
	return Transition{
		Status:    domain.StatusInProgress,
		Event:     ev,
		StartedBy: &actor,
	}, nil
}

// Pause suspends a running job with a mandatory cause. Routine pauses must be
// attributable; use GeneralPause for the operator's emergency exit path.
func Pause(job *domain.Job, cause string, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusInProgress {
		return Transition{}, ErrInvalidTransition
	}
	if strings.TrimSpace(cause) == "" {
		return Transition{}, ErrMissingCause
	}
	ev := newEvent(job.ID, domain.EventPauseStart, now, domain.PauseDetails(cause), actor)
	return Transition{Status: domain.StatusPaused, Event: ev}, nil
}

// GeneralPause pauses without a selected cause, recording the sentinel cause
// instead. Emergency pauses must never be blocked by missing classification
// data.
func GeneralPause(job *domain.Job, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusInProgress {
		return Transition{}, ErrInvalidTransition
	}
	ev := newEvent(job.ID, domain.EventPauseStart, now, domain.PauseDetails(domain.GeneralPauseCause), actor)
	return Transition{Status: domain.StatusPaused, Event: ev}, nil
}

func Resume(job *domain.Job, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusPaused {
		return Transition{}, ErrInvalidTransition
	}
	ev := newEvent(job.ID, domain.EventPauseEnd, now, nil, actor)
	return Transition{Status: domain.StatusInProgress, Event: ev}, nil
}

// Finish ends the run from in_progress or paused. Finishing while paused does
// not emit a synthetic pause_end; the open pause interval stays open and the
// calculator treats production_end as its implicit boundary.
func Finish(job *domain.Job, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusInProgress && job.Status != domain.StatusPaused {
		return Transition{}, ErrInvalidTransition
	}
	ev := newEvent(job.ID, domain.EventProductionEnd, now, nil, actor)
	finishedAt := now
	return Transition{
		Status:     domain.StatusFinished,
		Event:      ev,
		FinishedAt: &finishedAt,
	}, nil
}

// Cancel soft-deletes the job from any non-terminal state. No timeline event
// is required; priority keeps its last value.
func Cancel(job *domain.Job) (Transition, error) {
	if job.Status == domain.StatusFinished {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status == domain.StatusCancelled {
		return Transition{}, ErrInvalidTransition
	}
	cancelled := true
	return Transition{Status: domain.StatusCancelled, IsCancelled: &cancelled}, nil
}

// Reestablish returns a cancelled job to the queue with its priority
// unchanged.
func Reestablish(job *domain.Job) (Transition, error) {
	if job.Status != domain.StatusCancelled {
		return Transition{}, ErrInvalidTransition
	}
	cancelled := false
	return Transition{Status: domain.StatusQueued, IsCancelled: &cancelled}, nil
}

// BeginSetup opens a setup interval. Setup is an orthogonal sub-state: the
// job stays in_progress, but two open setup intervals are never allowed.
func BeginSetup(job *domain.Job, timeline []domain.TimelineEvent, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusInProgress {
		return Transition{}, ErrInvalidTransition
	}
	if SetupOpen(timeline) {
		return Transition{}, ErrInvalidTransition
	}
	ev := newEvent(job.ID, domain.EventSetupStart, now, nil, actor)
	return Transition{Status: job.Status, Event: ev}, nil
}

func EndSetup(job *domain.Job, timeline []domain.TimelineEvent, actor Actor, now time.Time) (Transition, error) {
	if job.Status.Terminal() {
		return Transition{}, ErrImmutableFinished
	}
	if job.Status != domain.StatusInProgress {
		return Transition{}, ErrInvalidTransition
	}
	if !SetupOpen(timeline) {
		return Transition{}, ErrInvalidTransition
	}
	ev := newEvent(job.ID, domain.EventSetupEnd, now, nil, actor)
	return Transition{Status: job.Status, Event: ev}, nil
}

// ValidateMove checks a press reassignment. Moves are free while queued and
// rejected outright while the job is live. targetLive must report whether the
// destination press already hosts a live job.
func ValidateMove(job *domain.Job, targetLive bool) error {
	if job.Status == domain.StatusFinished {
		return ErrImmutableFinished
	}
	if job.Status.Live() {
		return ErrInvalidTransition
	}
	if targetLive {
		return ErrPressOccupied
	}
	return nil
}

// ValidateReorder checks a priority change. Reordering is only meaningful
// among queued jobs; jobs in other statuses must not be assigned new
// priorities as a side effect.
func ValidateReorder(job *domain.Job) error {
	if job.Status == domain.StatusFinished || job.Status == domain.StatusCancelled {
		return ErrImmutableFinished
	}
	if job.Status != domain.StatusQueued {
		return ErrInvalidTransition
	}
	return nil
}

// ApplyEvent validates a raw timeline append (the POST /jobs/:id/timeline
// channel) by routing it through the equivalent action, so the append-only
// log can never reach an invalid shape through the back door.
func ApplyEvent(job *domain.Job, timeline []domain.TimelineEvent, evType domain.EventType, cause string, pressLive bool, actor Actor, at time.Time) (Transition, error) {
	switch evType {
	case domain.EventProductionStart:
		return Start(job, pressLive, actor, at)
	case domain.EventProductionEnd:
		return Finish(job, actor, at)
	case domain.EventPauseStart:
		if strings.TrimSpace(cause) == "" {
			return GeneralPause(job, actor, at)
		}
		return Pause(job, cause, actor, at)
	case domain.EventPauseEnd:
		return Resume(job, actor, at)
	case domain.EventSetupStart:
		return BeginSetup(job, timeline, actor, at)
	case domain.EventSetupEnd:
		return EndSetup(job, timeline, actor, at)
	}
	return Transition{}, ErrInvalidTransition
}

// SetupOpen reports whether the timeline has a setup_start with no later
// setup_end.
func SetupOpen(timeline []domain.TimelineEvent) bool {
	return openInterval(timeline, domain.EventSetupStart, domain.EventSetupEnd)
}

// PauseOpen reports whether the timeline has a pause_start with no later
// pause_end.
func PauseOpen(timeline []domain.TimelineEvent) bool {
	return openInterval(timeline, domain.EventPauseStart, domain.EventPauseEnd)
}

func openInterval(timeline []domain.TimelineEvent, start, end domain.EventType) bool {
	sorted := make([]domain.TimelineEvent, len(timeline))
	copy(sorted, timeline)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	open := false
	for _, ev := range sorted {
		switch ev.Type {
		case start:
			open = true
		case end:
			open = false
		}
	}
	return open
}

func newEvent(jobID uuid.UUID, t domain.EventType, at time.Time, details datatypes.JSON, actor Actor) *domain.TimelineEvent {
	ev := &domain.TimelineEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		Type:      t,
		Timestamp: at,
		Details:   details,
		ActorName: actor.Name,
	}
	if actor.ID != uuid.Nil {
		id := actor.ID
		ev.ActorID = &id
	}
	return ev
}

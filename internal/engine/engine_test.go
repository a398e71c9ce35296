package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/impresia/tiraje-backend/internal/domain"
)

var t0 = time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)

func queuedJob() *domain.Job {
	return &domain.Job{
		ID:        uuid.New(),
		OrderCode: "OT-1102",
		Client:    "Cliente A",
		Press:     "Prensa 102",
		Status:    domain.StatusQueued,
		Priority:  1,
	}
}

func operator() Actor {
	return Actor{ID: uuid.New(), Name: "J. Ramirez"}
}

func TestStart(t *testing.T) {
	job := queuedJob()
	actor := operator()

	tr, err := Start(job, false, actor, t0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if tr.Status != domain.StatusInProgress {
		t.Fatalf("Start: status = %q, want in_progress", tr.Status)
	}
	if tr.Event == nil || tr.Event.Type != domain.EventProductionStart {
		t.Fatalf("Start: expected production_start event, got %+v", tr.Event)
	}
	if !tr.Event.Timestamp.Equal(t0) {
		t.Fatalf("Start: event timestamp = %v, want %v", tr.Event.Timestamp, t0)
	}
	if tr.Event.ActorID == nil || *tr.Event.ActorID != actor.ID || tr.Event.ActorName != actor.Name {
		t.Fatalf("Start: actor not stamped on event: %+v", tr.Event)
	}
	if tr.StartedBy == nil || tr.StartedBy.ID != actor.ID {
		t.Fatalf("Start: StartedBy not recorded")
	}

	// A second start on the same job must be rejected.
	job.Status = tr.Status
	if _, err := Start(job, false, actor, t0.Add(time.Minute)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second Start: err = %v, want ErrInvalidTransition", err)
	}
}

func TestStartRejections(t *testing.T) {
	actor := operator()
	tests := []struct {
		name      string
		status    domain.JobStatus
		pressLive bool
		want      *Error
	}{
		{"press occupied", domain.StatusQueued, true, ErrPressOccupied},
		{"already paused", domain.StatusPaused, false, ErrInvalidTransition},
		{"finished", domain.StatusFinished, false, ErrImmutableFinished},
		{"cancelled", domain.StatusCancelled, false, ErrImmutableFinished},
	}
	for _, tc := range tests {
		job := queuedJob()
		job.Status = tc.status
		if _, err := Start(job, tc.pressLive, actor, t0); !errors.Is(err, tc.want) {
			t.Fatalf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestPauseRequiresCause(t *testing.T) {
	actor := operator()
	job := queuedJob()
	job.Status = domain.StatusInProgress

	if _, err := Pause(job, "", actor, t0); !errors.Is(err, ErrMissingCause) {
		t.Fatalf("Pause empty cause: err = %v, want ErrMissingCause", err)
	}
	if _, err := Pause(job, "   ", actor, t0); !errors.Is(err, ErrMissingCause) {
		t.Fatalf("Pause blank cause: err = %v, want ErrMissingCause", err)
	}

	tr, err := Pause(job, "falta_papel", actor, t0)
	if err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if tr.Status != domain.StatusPaused {
		t.Fatalf("Pause: status = %q, want paused", tr.Status)
	}
	if tr.Event == nil || tr.Event.Type != domain.EventPauseStart {
		t.Fatalf("Pause: expected pause_start event")
	}
	if got := tr.Event.Cause(); got != "falta_papel" {
		t.Fatalf("Pause: cause = %q, want falta_papel", got)
	}
}

func TestGeneralPauseRecordsSentinelCause(t *testing.T) {
	job := queuedJob()
	job.Status = domain.StatusInProgress

	tr, err := GeneralPause(job, operator(), t0)
	if err != nil {
		t.Fatalf("GeneralPause: %v", err)
	}
	if got := tr.Event.Cause(); got != domain.GeneralPauseCause {
		t.Fatalf("GeneralPause: cause = %q, want %q", got, domain.GeneralPauseCause)
	}

	job.Status = domain.StatusQueued
	if _, err := GeneralPause(job, operator(), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("GeneralPause on queued: err = %v, want ErrInvalidTransition", err)
	}
}

func TestResume(t *testing.T) {
	job := queuedJob()
	job.Status = domain.StatusPaused

	tr, err := Resume(job, operator(), t0)
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	if tr.Status != domain.StatusInProgress || tr.Event.Type != domain.EventPauseEnd {
		t.Fatalf("Resume: got status %q event %q", tr.Status, tr.Event.Type)
	}

	job.Status = domain.StatusInProgress
	if _, err := Resume(job, operator(), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Resume while running: err = %v, want ErrInvalidTransition", err)
	}
}

func TestFinish(t *testing.T) {
	for _, from := range []domain.JobStatus{domain.StatusInProgress, domain.StatusPaused} {
		job := queuedJob()
		job.Status = from
		tr, err := Finish(job, operator(), t0)
		if err != nil {
			t.Fatalf("Finish from %s: %v", from, err)
		}
		if tr.Status != domain.StatusFinished {
			t.Fatalf("Finish from %s: status = %q", from, tr.Status)
		}
		if tr.Event == nil || tr.Event.Type != domain.EventProductionEnd {
			t.Fatalf("Finish from %s: expected production_end", from)
		}
		if tr.FinishedAt == nil || !tr.FinishedAt.Equal(t0) {
			t.Fatalf("Finish from %s: FinishedAt = %v, want %v", from, tr.FinishedAt, t0)
		}
	}

	job := queuedJob()
	if _, err := Finish(job, operator(), t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Finish queued: err = %v, want ErrInvalidTransition", err)
	}
	job.Status = domain.StatusFinished
	if _, err := Finish(job, operator(), t0); !errors.Is(err, ErrImmutableFinished) {
		t.Fatalf("Finish finished: err = %v, want ErrImmutableFinished", err)
	}
}

func TestCancelAndReestablish(t *testing.T) {
	for _, from := range []domain.JobStatus{domain.StatusQueued, domain.StatusInProgress, domain.StatusPaused} {
		job := queuedJob()
		job.Status = from
		tr, err := Cancel(job)
		if err != nil {
			t.Fatalf("Cancel from %s: %v", from, err)
		}
		if tr.Status != domain.StatusCancelled || tr.IsCancelled == nil || !*tr.IsCancelled {
			t.Fatalf("Cancel from %s: %+v", from, tr)
		}
		if tr.Event != nil {
			t.Fatalf("Cancel from %s: no timeline event expected", from)
		}
	}

	job := queuedJob()
	job.Status = domain.StatusFinished
	if _, err := Cancel(job); !errors.Is(err, ErrImmutableFinished) {
		t.Fatalf("Cancel finished: err = %v, want ErrImmutableFinished", err)
	}

	job = queuedJob()
	job.Status = domain.StatusCancelled
	job.Priority = 7
	tr, err := Reestablish(job)
	if err != nil {
		t.Fatalf("Reestablish: %v", err)
	}
	if tr.Status != domain.StatusQueued || tr.IsCancelled == nil || *tr.IsCancelled {
		t.Fatalf("Reestablish: %+v", tr)
	}
	// Priority is retained; the transition does not touch it.
	if job.Priority != 7 {
		t.Fatalf("Reestablish: priority changed to %d", job.Priority)
	}

	job.Status = domain.StatusQueued
	if _, err := Reestablish(job); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("Reestablish queued: err = %v, want ErrInvalidTransition", err)
	}
}

func TestSetupSubState(t *testing.T) {
	job := queuedJob()
	job.Status = domain.StatusInProgress
	actor := operator()

	tr, err := BeginSetup(job, nil, actor, t0)
	if err != nil {
		t.Fatalf("BeginSetup: %v", err)
	}
	if tr.Status != domain.StatusInProgress || tr.Event.Type != domain.EventSetupStart {
		t.Fatalf("BeginSetup: got status %q event %q", tr.Status, tr.Event.Type)
	}

	timeline := []domain.TimelineEvent{*tr.Event}
	if _, err := BeginSetup(job, timeline, actor, t0.Add(time.Minute)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("BeginSetup with open setup: err = %v, want ErrInvalidTransition", err)
	}

	endTr, err := EndSetup(job, timeline, actor, t0.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("EndSetup: %v", err)
	}
	timeline = append(timeline, *endTr.Event)
	if _, err := EndSetup(job, timeline, actor, t0.Add(11*time.Minute)); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("EndSetup with no open setup: err = %v, want ErrInvalidTransition", err)
	}

	// Setup never opens while paused.
	job.Status = domain.StatusPaused
	if _, err := BeginSetup(job, timeline, actor, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("BeginSetup while paused: err = %v, want ErrInvalidTransition", err)
	}
}

func TestValidateMove(t *testing.T) {
	job := queuedJob()
	if err := ValidateMove(job, false); err != nil {
		t.Fatalf("ValidateMove queued: %v", err)
	}
	if err := ValidateMove(job, true); !errors.Is(err, ErrPressOccupied) {
		t.Fatalf("ValidateMove occupied target: err = %v, want ErrPressOccupied", err)
	}
	for _, live := range []domain.JobStatus{domain.StatusInProgress, domain.StatusPaused} {
		job.Status = live
		if err := ValidateMove(job, false); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("ValidateMove %s: err = %v, want ErrInvalidTransition", live, err)
		}
	}
	job.Status = domain.StatusFinished
	if err := ValidateMove(job, false); !errors.Is(err, ErrImmutableFinished) {
		t.Fatalf("ValidateMove finished: err = %v, want ErrImmutableFinished", err)
	}
}

func TestValidateReorder(t *testing.T) {
	job := queuedJob()
	if err := ValidateReorder(job); err != nil {
		t.Fatalf("ValidateReorder queued: %v", err)
	}
	job.Status = domain.StatusInProgress
	if err := ValidateReorder(job); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ValidateReorder in_progress: err = %v, want ErrInvalidTransition", err)
	}
	job.Status = domain.StatusFinished
	if err := ValidateReorder(job); !errors.Is(err, ErrImmutableFinished) {
		t.Fatalf("ValidateReorder finished: err = %v, want ErrImmutableFinished", err)
	}
}

func TestApplyEventRoutesToActions(t *testing.T) {
	actor := operator()

	job := queuedJob()
	tr, err := ApplyEvent(job, nil, domain.EventProductionStart, "", false, actor, t0)
	if err != nil || tr.Status != domain.StatusInProgress {
		t.Fatalf("ApplyEvent production_start: tr=%+v err=%v", tr, err)
	}

	job.Status = domain.StatusInProgress
	tr, err = ApplyEvent(job, nil, domain.EventPauseStart, "", false, actor, t0)
	if err != nil {
		t.Fatalf("ApplyEvent pause_start no cause: %v", err)
	}
	if got := tr.Event.Cause(); got != domain.GeneralPauseCause {
		t.Fatalf("ApplyEvent pause_start no cause: cause = %q, want sentinel", got)
	}

	if _, err := ApplyEvent(job, nil, domain.EventType("bogus"), "", false, actor, t0); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("ApplyEvent bogus type: err = %v, want ErrInvalidTransition", err)
	}
}

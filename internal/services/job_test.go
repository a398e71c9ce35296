package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/catalog"
	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/engine"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/repos/testutil"
	"github.com/impresia/tiraje-backend/internal/requestdata"
)

// newJobService builds a service against the integration DB with a throwaway
// press, so parallel test runs never fight over press occupancy. Created rows
// are deleted on cleanup because the service manages its own transactions.
func newJobService(t *testing.T) (JobService, string, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	press := "Prensa Test " + uuid.NewString()[:8]
	cat := catalog.Catalog{
		Presses:     []string{press},
		PauseCauses: catalog.Default().PauseCauses,
	}
	svc := NewJobService(db, log, repos.NewJobRepo(db, log), repos.NewTimelineEventRepo(db, log), cat)
	t.Cleanup(func() {
		var ids []uuid.UUID
		db.Model(&domain.Job{}).Where("press = ?", press).Pluck("id", &ids)
		if len(ids) > 0 {
			db.Where("job_id IN ?", ids).Delete(&domain.TimelineEvent{})
			db.Unscoped().Where("id IN ?", ids).Delete(&domain.Job{})
		}
	})
	return svc, press, db
}

func operatorCtx(name string) context.Context {
	return requestdata.WithRequestData(context.Background(), &requestdata.RequestData{
		UserID: uuid.New(),
		Name:   name,
		Role:   string(domain.RoleOperario),
	})
}

func TestJobLifecycle(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Ana")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente Uno",
		JobType:   "folleto",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if job.Status != domain.StatusQueued {
		t.Fatalf("new job status = %s, want queued", job.Status)
	}
	if job.Priority != 0 {
		t.Fatalf("first queued priority = %d, want 0", job.Priority)
	}

	second, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente Dos",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.Priority != 1 {
		t.Fatalf("second queued priority = %d, want 1", second.Priority)
	}

	job, err = svc.Start(ctx, job.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if job.Status != domain.StatusInProgress {
		t.Fatalf("status after start = %s", job.Status)
	}
	if job.StartedByName != "Ana" {
		t.Fatalf("startedByName = %q, want Ana", job.StartedByName)
	}
	if len(job.Timeline) != 1 || job.Timeline[0].Type != domain.EventProductionStart {
		t.Fatalf("timeline after start = %+v", job.Timeline)
	}

	if _, err := svc.Start(ctx, second.ID); !errors.Is(err, engine.ErrPressOccupied) {
		t.Fatalf("start on occupied press: got %v, want ErrPressOccupied", err)
	}

	if _, err := svc.Pause(ctx, job.ID, "   "); !errors.Is(err, engine.ErrMissingCause) {
		t.Fatalf("pause without cause: got %v, want ErrMissingCause", err)
	}

	job, err = svc.Pause(ctx, job.ID, "falta_papel")
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if job.Status != domain.StatusPaused {
		t.Fatalf("status after pause = %s", job.Status)
	}
	last := job.Timeline[len(job.Timeline)-1]
	if last.Type != domain.EventPauseStart || last.Cause() != "falta_papel" {
		t.Fatalf("pause event = %s cause %q", last.Type, last.Cause())
	}
	if job.PauseCount != 1 {
		t.Fatalf("pauseCount = %d, want 1", job.PauseCount)
	}

	job, err = svc.Resume(ctx, job.ID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if job.Status != domain.StatusInProgress {
		t.Fatalf("status after resume = %s", job.Status)
	}

	job, err = svc.BeginSetup(ctx, job.ID)
	if err != nil {
		t.Fatalf("begin setup: %v", err)
	}
	if _, err := svc.BeginSetup(ctx, job.ID); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("double begin setup: got %v, want ErrInvalidTransition", err)
	}
	job, err = svc.EndSetup(ctx, job.ID)
	if err != nil {
		t.Fatalf("end setup: %v", err)
	}
	if job.SetupCount != 1 {
		t.Fatalf("setupCount = %d, want 1", job.SetupCount)
	}

	job, err = svc.Finish(ctx, job.ID)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if job.Status != domain.StatusFinished || job.FinishedAt == nil {
		t.Fatalf("finished job = status %s finishedAt %v", job.Status, job.FinishedAt)
	}

	if _, err := svc.Start(ctx, job.ID); !errors.Is(err, engine.ErrImmutableFinished) {
		t.Fatalf("start finished job: got %v, want ErrImmutableFinished", err)
	}

	// The press is free again.
	if _, err := svc.Start(ctx, second.ID); err != nil {
		t.Fatalf("start second after finish: %v", err)
	}
}

func TestGeneralPauseRecordsSentinel(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Luis")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	job, err = svc.GeneralPause(ctx, job.ID)
	if err != nil {
		t.Fatalf("general pause: %v", err)
	}
	last := job.Timeline[len(job.Timeline)-1]
	if last.Cause() != domain.GeneralPauseCause {
		t.Fatalf("general pause cause = %q, want %q", last.Cause(), domain.GeneralPauseCause)
	}
}

func TestFinishWhilePausedKeepsPauseOpen(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Eva")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Pause(ctx, job.ID, "limpieza"); err != nil {
		t.Fatalf("pause: %v", err)
	}
	job, err = svc.Finish(ctx, job.ID)
	if err != nil {
		t.Fatalf("finish while paused: %v", err)
	}
	for _, ev := range job.Timeline {
		if ev.Type == domain.EventPauseEnd {
			t.Fatalf("finish while paused must not emit pause_end, timeline = %+v", job.Timeline)
		}
	}
	_, times, err := svc.DerivedTimes(ctx, job.ID)
	if err != nil {
		t.Fatalf("derived times: %v", err)
	}
	if times.PauseCount != 1 {
		t.Fatalf("pauseCount = %d, want 1", times.PauseCount)
	}
	if times.NetTirajeSeconds > times.GrossProductionSeconds {
		t.Fatalf("net %d > gross %d", times.NetTirajeSeconds, times.GrossProductionSeconds)
	}
}

func TestCancelAndReestablish(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Sup")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		Press:     press,
		Priority:  intPtr(4),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	job, err = svc.Cancel(ctx, job.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if job.Status != domain.StatusCancelled || !job.IsCancelled {
		t.Fatalf("cancelled job = status %s isCancelled %v", job.Status, job.IsCancelled)
	}
	job, err = svc.Reestablish(ctx, job.ID)
	if err != nil {
		t.Fatalf("reestablish: %v", err)
	}
	if job.Status != domain.StatusQueued || job.IsCancelled {
		t.Fatalf("reestablished job = status %s isCancelled %v", job.Status, job.IsCancelled)
	}
	if job.Priority != 4 {
		t.Fatalf("reestablish changed priority to %d, want 4", job.Priority)
	}
}

func TestUpdateJob(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Sup")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	speed := "9500"
	comments := "urgente"
	job, err = svc.Update(ctx, job.ID, UpdateJobInput{
		MachineSpeed:       &speed,
		SupervisorComments: &comments,
		Priority:           intPtr(7),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if job.MachineSpeed != "9500" || job.SupervisorComments != "urgente" || job.Priority != 7 {
		t.Fatalf("update not applied: %+v", job)
	}

	if _, err := svc.Update(ctx, job.ID, UpdateJobInput{Press: strPtr("Prensa Inexistente")}); !errors.Is(err, ErrUnknownPress) {
		t.Fatalf("move to unknown press: got %v, want ErrUnknownPress", err)
	}

	if _, err := svc.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Update(ctx, job.ID, UpdateJobInput{Priority: intPtr(1)}); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("reorder live job: got %v, want ErrInvalidTransition", err)
	}
	if _, err := svc.Finish(ctx, job.ID); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, err := svc.Update(ctx, job.ID, UpdateJobInput{Client: strPtr("otro")}); !errors.Is(err, engine.ErrImmutableFinished) {
		t.Fatalf("update finished job: got %v, want ErrImmutableFinished", err)
	}
}

func TestAppendEventRejectsBackdated(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Op")

	job, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		Press:     press,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Start(ctx, job.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	backdated := time.Now().UTC().Add(-time.Hour)
	if _, err := svc.AppendEvent(ctx, job.ID, domain.EventPauseStart, "limpieza", backdated); !errors.Is(err, engine.ErrInvalidTransition) {
		t.Fatalf("backdated append: got %v, want ErrInvalidTransition", err)
	}

	job, err = svc.AppendEvent(ctx, job.ID, domain.EventPauseStart, "limpieza", time.Time{})
	if err != nil {
		t.Fatalf("append pause_start: %v", err)
	}
	if job.Status != domain.StatusPaused {
		t.Fatalf("status after appended pause_start = %s", job.Status)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, press, _ := newJobService(t)
	ctx := operatorCtx("Sup")

	if _, err := svc.Create(ctx, CreateJobInput{Client: "c", Press: press}); err == nil {
		t.Fatal("create without ot should fail")
	}
	if _, err := svc.Create(ctx, CreateJobInput{
		OrderCode: "OT-x", Client: "c", Press: "Prensa Fantasma",
	}); !errors.Is(err, ErrUnknownPress) {
		t.Fatalf("create on unknown press: got %v, want ErrUnknownPress", err)
	}

	ot := "OT-" + uuid.NewString()[:8]
	if _, err := svc.Create(ctx, CreateJobInput{OrderCode: ot, Client: "c", Press: press}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateJobInput{OrderCode: ot, Client: "c", Press: press}); !errors.Is(err, ErrDuplicateOrder) {
		t.Fatalf("duplicate ot: got %v, want ErrDuplicateOrder", err)
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/impresia/tiraje-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, employeeID string, role domain.Role) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:         uuid.New(),
		EmployeeID: employeeID,
		Name:       "Test User",
		Password:   "pw",
		Role:       role,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedJob(tb testing.TB, ctx context.Context, tx *gorm.DB, press string, status domain.JobStatus, priority int) *domain.Job {
	tb.Helper()
	j := &domain.Job{
		ID:        uuid.New(),
		OrderCode: "OT-" + uuid.NewString()[:8],
		Client:    "Cliente",
		JobType:   "folleto",
		Press:     press,
		Status:    status,
		Priority:  priority,
		ColorMode: domain.ColorNone,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := tx.WithContext(ctx).Create(j).Error; err != nil {
		tb.Fatalf("seed job: %v", err)
	}
	return j
}

func SeedEvent(tb testing.TB, ctx context.Context, tx *gorm.DB, jobID uuid.UUID, t domain.EventType, at time.Time) *domain.TimelineEvent {
	tb.Helper()
	ev := &domain.TimelineEvent{
		ID:        uuid.New(),
		JobID:     jobID,
		Type:      t,
		Timestamp: at,
		CreatedAt: at,
	}
	if err := tx.WithContext(ctx).Create(ev).Error; err != nil {
		tb.Fatalf("seed event: %v", err)
	}
	return ev
}

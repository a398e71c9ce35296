package handlers

import (
	"testing"
	"time"

	"github.com/impresia/tiraje-backend/internal/domain"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want domain.JobStatus
		ok   bool
	}{
		{"queued", domain.StatusQueued, true},
		{"en cola", domain.StatusQueued, true},
		{"EN_COLA", domain.StatusQueued, true},
		{"en_curso", domain.StatusInProgress, true},
		{"in_progress", domain.StatusInProgress, true},
		{"pausado", domain.StatusPaused, true},
		{"en_pausa", domain.StatusPaused, true},
		{"  Paused ", domain.StatusPaused, true},
		{"terminado", domain.StatusFinished, true},
		{"finished", domain.StatusFinished, true},
		{"cancelado", domain.StatusCancelled, true},
		{"canceled", domain.StatusCancelled, true},
		{"cancelled", domain.StatusCancelled, true},
		{"archivado", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := parseStatus(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseStatus(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseDateBound(t *testing.T) {
	got, dateOnly, err := parseDateBound("2026-08-28")
	if err != nil || !dateOnly {
		t.Fatalf("bare date: got dateOnly=%v err=%v", dateOnly, err)
	}
	want := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("bare date = %v, want %v", got, want)
	}

	got, dateOnly, err = parseDateBound("2026-08-28T14:30:00Z")
	if err != nil || dateOnly {
		t.Fatalf("rfc3339: got dateOnly=%v err=%v", dateOnly, err)
	}
	if got.Hour() != 14 {
		t.Fatalf("rfc3339 hour = %d", got.Hour())
	}

	if _, _, err := parseDateBound("28/08/2026"); err == nil {
		t.Fatal("slash date should be rejected")
	}
}

package handlers

import (
	"strings"

	"github.com/impresia/tiraje-backend/internal/domain"
)

// parseStatus accepts both the canonical status vocabulary and the legacy
// Spanish spellings still emitted by older dashboard builds. Translation
// happens here at the boundary only; nothing past the handlers ever sees a
// legacy spelling.
func parseStatus(raw string) (domain.JobStatus, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "_", " ")
	switch s {
	case "queued", "en cola":
		return domain.StatusQueued, true
	case "in progress", "en curso":
		return domain.StatusInProgress, true
	case "paused", "pausado", "en pausa":
		return domain.StatusPaused, true
	case "finished", "terminado":
		return domain.StatusFinished, true
	case "cancelled", "canceled", "cancelado":
		return domain.StatusCancelled, true
	}
	return "", false
}

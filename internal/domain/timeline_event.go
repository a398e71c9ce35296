package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventType string

const (
	EventProductionStart EventType = "production_start"
	EventProductionEnd   EventType = "production_end"
	EventSetupStart      EventType = "setup_start"
	EventSetupEnd        EventType = "setup_end"
	EventPauseStart      EventType = "pause_start"
	EventPauseEnd        EventType = "pause_end"
)

func (t EventType) Valid() bool {
	switch t {
	case EventProductionStart, EventProductionEnd,
		EventSetupStart, EventSetupEnd,
		EventPauseStart, EventPauseEnd:
		return true
	}
	return false
}

// GeneralPauseCause is the sentinel recorded when an operator pauses without
// selecting a cause (the emergency exit path).
const GeneralPauseCause = "general"

// TimelineEvent is an append-only immutable fact about a job. The only
// semantically used Details field is "cause" on pause_start.
type TimelineEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	JobID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"jobId"`
	Type      EventType      `gorm:"column:type;not null;index" json:"type"`
	Timestamp time.Time      `gorm:"column:timestamp;not null;index" json:"timestamp"`
	Details   datatypes.JSON `gorm:"type:jsonb;column:details" json:"details,omitempty"`
	ActorID   *uuid.UUID     `gorm:"type:uuid;column:actor_id" json:"actorId,omitempty"`
	ActorName string         `gorm:"column:actor_name" json:"actorName,omitempty"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"createdAt"`
}

func (TimelineEvent) TableName() string { return "timeline_event" }

// Cause extracts the pause cause from Details. Empty when absent or the
// details are not valid JSON.
func (e *TimelineEvent) Cause() string {
	if len(e.Details) == 0 {
		return ""
	}
	var d struct {
		Cause string `json:"cause"`
	}
	if err := json.Unmarshal(e.Details, &d); err != nil {
		return ""
	}
	return d.Cause
}

// PauseDetails builds the Details payload for a pause_start event.
func PauseDetails(cause string) datatypes.JSON {
	raw, _ := json.Marshal(map[string]string{"cause": cause})
	return datatypes.JSON(raw)
}

package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Job is a print work order (OT) scheduled on a press. Its status is only
// mutated through engine-validated transitions; the timeline is the system of
// record for every state change.
type Job struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderCode       string    `gorm:"column:order_code;not null;uniqueIndex" json:"ot"`
	Client          string    `gorm:"column:client;not null" json:"client"`
	JobType         string    `gorm:"column:job_type" json:"jobType"`
	QuantityPlanned int       `gorm:"column:quantity_planned;not null;default:0" json:"quantityPlanned"`
	Press           string    `gorm:"column:press;not null;index" json:"press"`

	Status      JobStatus `gorm:"column:status;not null;index" json:"status"`
	IsCancelled bool      `gorm:"column:is_cancelled;not null;default:false" json:"isCancelled"`
	// Priority orders the queue within a press; lower is served first.
	// Only meaningful while Status is queued.
	Priority int `gorm:"column:priority;not null;default:0;index" json:"priority"`

	Pantone   bool      `gorm:"column:pantone;not null;default:false" json:"pantone"`
	Varnish   bool      `gorm:"column:varnish;not null;default:false" json:"varnish"`
	ColorMode ColorMode `gorm:"column:color_mode;not null;default:none" json:"colorMode"`

	// Aggregates cached from the timeline, refreshed on every accepted event.
	SetupCount        int   `gorm:"column:setup_count;not null;default:0" json:"setupCount"`
	TotalSetupSeconds int64 `gorm:"column:total_setup_seconds;not null;default:0" json:"totalSetupTime"`
	PauseCount        int   `gorm:"column:pause_count;not null;default:0" json:"pauseCount"`
	TotalPauseSeconds int64 `gorm:"column:total_pause_seconds;not null;default:0" json:"totalPauseTime"`

	SupervisorComments string `gorm:"column:supervisor_comments;type:text" json:"comments"`
	OperatorComments   string `gorm:"column:operator_comments;type:text" json:"operatorComments"`
	MachineSpeed       string `gorm:"column:machine_speed" json:"machineSpeed"`

	StartedByID   *uuid.UUID `gorm:"type:uuid;column:started_by_id" json:"startedById,omitempty"`
	StartedByName string     `gorm:"column:started_by_name" json:"startedByName,omitempty"`

	Timeline []TimelineEvent `gorm:"foreignKey:JobID" json:"timeline,omitempty"`

	CreatedAt  time.Time      `gorm:"not null;default:now();index" json:"createdAt"`
	UpdatedAt  time.Time      `gorm:"not null;default:now();index" json:"updatedAt"`
	FinishedAt *time.Time     `gorm:"column:finished_at;index" json:"finishedAt,omitempty"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

func (Job) TableName() string { return "job" }

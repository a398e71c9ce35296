package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/impresia/tiraje-backend/internal/domain"
	"github.com/impresia/tiraje-backend/internal/logger"
	"github.com/impresia/tiraje-backend/internal/repos"
	"github.com/impresia/tiraje-backend/internal/timecalc"
)

// ReportRow is one line of the production report: the job's descriptive
// fields plus the derived time columns, preformatted the way the report page
// displays them. NetTiraje and friends are also exposed raw so clients can
// aggregate.
type ReportRow struct {
	JobID           uuid.UUID        `json:"jobId"`
	OrderCode       string           `json:"ot"`
	Client          string           `json:"client"`
	Press           string           `json:"press"`
	JobType         string           `json:"jobType"`
	QuantityPlanned int              `json:"quantityPlanned"`
	MachineSpeed    string           `json:"machineSpeed"`
	Pantone         bool             `json:"pantone"`
	Varnish         bool             `json:"varnish"`
	ColorMode       domain.ColorMode `json:"colorMode"`
	Status          domain.JobStatus `json:"status"`

	SetupCount      int    `json:"setupCount"`
	SetupSeconds    int64  `json:"setupSeconds"`
	SetupFormatted  string `json:"setupFormatted"`
	PauseCount      int    `json:"pauseCount"`
	PauseSeconds    int64  `json:"pauseSeconds"`
	PauseFormatted  string `json:"pauseFormatted"`
	TirajeSeconds   int64  `json:"tirajeSeconds"`
	TirajeFormatted string `json:"tirajeFormatted"`

	SupervisorComments string `json:"comments"`
	OperatorComments   string `json:"operatorComments"`

	StartedByName string     `json:"startedByName,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`

	Warnings []string `json:"warnings,omitempty"`
}

type ReportService interface {
	Rows(ctx context.Context, f repos.JobFilter) ([]ReportRow, error)
}

type reportService struct {
	log     *logger.Logger
	jobRepo repos.JobRepo
}

func NewReportService(log *logger.Logger, jobRepo repos.JobRepo) ReportService {
	return &reportService{
		log:     log.With("service", "ReportService"),
		jobRepo: jobRepo,
	}
}

func (rs *reportService) Rows(ctx context.Context, f repos.JobFilter) ([]ReportRow, error) {
	f.WithTimeline = true
	jobs, err := rs.jobRepo.List(ctx, nil, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs for report: %w", err)
	}

	now := time.Now().UTC()
	rows := make([]ReportRow, 0, len(jobs))
	for _, job := range jobs {
		d := timecalc.ComputeForJob(job, now)
		rows = append(rows, ReportRow{
			JobID:           job.ID,
			OrderCode:       job.OrderCode,
			Client:          job.Client,
			Press:           job.Press,
			JobType:         job.JobType,
			QuantityPlanned: job.QuantityPlanned,
			MachineSpeed:    job.MachineSpeed,
			Pantone:         job.Pantone,
			Varnish:         job.Varnish,
			ColorMode:       job.ColorMode,
			Status:          job.Status,

			SetupCount:      d.SetupCount,
			SetupSeconds:    d.TotalSetupSeconds,
			SetupFormatted:  timecalc.FormatHM(d.TotalSetupSeconds),
			PauseCount:      d.PauseCount,
			PauseSeconds:    d.TotalPauseSeconds,
			PauseFormatted:  timecalc.FormatHM(d.TotalPauseSeconds),
			TirajeSeconds:   d.NetTirajeSeconds,
			TirajeFormatted: timecalc.FormatHM(d.NetTirajeSeconds),

			SupervisorComments: job.SupervisorComments,
			OperatorComments:   job.OperatorComments,

			StartedByName: job.StartedByName,
			CreatedAt:     job.CreatedAt,
			FinishedAt:    job.FinishedAt,

			Warnings: d.Warnings,
		})
	}
	return rows, nil
}

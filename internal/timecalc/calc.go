// Package timecalc derives setup, pause and net production ("tiraje") times
// from a job's raw timeline. It is a pure function over the event log: it
// never mutates anything, never raises for bad historical data, and degrades
// to clamped zero values with warnings instead.
package timecalc

import (
	"fmt"
	"sort"
	"time"

	"github.com/impresia/tiraje-backend/internal/domain"
)

// Interval is one matched start/end pair. End is nil while the interval is
// still open. Cause is only set on pause intervals.
type Interval struct {
	Start   time.Time  `json:"start"`
	End     *time.Time `json:"end"`
	Cause   string     `json:"cause,omitempty"`
	Seconds int64      `json:"seconds"`
}

type DerivedTimes struct {
	// Started is false when the job has no production_start yet; every other
	// field is then zero and should render as "N/A".
	Started bool `json:"started"`

	GrossProductionSeconds int64 `json:"grossProductionSeconds"`
	NetTirajeSeconds       int64 `json:"netTirajeSeconds"`
	TotalSetupSeconds      int64 `json:"totalSetupSeconds"`
	TotalPauseSeconds      int64 `json:"totalPauseSeconds"`

	// SetupCount counts closed setup intervals only; an open interval does
	// not count until it is closed.
	SetupCount int `json:"setupCount"`
	// PauseCount counts recorded pauses, open ones included.
	PauseCount int `json:"pauseCount"`

	SetupIntervals []Interval `json:"setupIntervals"`
	PauseIntervals []Interval `json:"pauseIntervals"`

	ProductionOpen bool `json:"productionOpen"`

	// Warnings flags impossible event orderings found in historical data.
	Warnings []string `json:"warnings,omitempty"`
}

// Compute derives all metrics from the timeline. The input order does not
// matter; events are sorted by timestamp first. totalPauseSeconds is the
// job's cached aggregate, used as a fallback when the timeline itself carries
// no pause events (older records kept only the aggregate).
func Compute(events []domain.TimelineEvent, totalPauseSeconds int64, now time.Time) DerivedTimes {
	sorted := make([]domain.TimelineEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var d DerivedTimes

	var firstStart, lastEnd *time.Time
	for i := range sorted {
		ev := sorted[i]
		switch ev.Type {
		case domain.EventProductionStart:
			if firstStart == nil {
				t := ev.Timestamp
				firstStart = &t
			} else if lastEnd == nil {
				d.Warnings = append(d.Warnings, "production_start while production already open")
			}
		case domain.EventProductionEnd:
			if firstStart == nil {
				d.Warnings = append(d.Warnings, "production_end without production_start")
				continue
			}
			t := ev.Timestamp
			lastEnd = &t
		}
	}

	if firstStart == nil {
		return d
	}
	d.Started = true

	// First start to last end; "now" stands in while the run is still open.
	// Pairwise matching is deliberately not used for production: restarts
	// after pauses do not re-emit production_start.
	end := now
	if lastEnd != nil {
		end = *lastEnd
	} else {
		d.ProductionOpen = true
	}
	d.GrossProductionSeconds = clampSeconds(*firstStart, end)

	d.SetupIntervals = matchIntervals(sorted, domain.EventSetupStart, domain.EventSetupEnd, &d.Warnings)
	d.PauseIntervals = matchIntervals(sorted, domain.EventPauseStart, domain.EventPauseEnd, &d.Warnings)

	for _, iv := range d.SetupIntervals {
		if iv.End != nil {
			d.TotalSetupSeconds += iv.Seconds
			d.SetupCount++
		}
	}

	d.PauseCount = len(d.PauseIntervals)
	for _, iv := range d.PauseIntervals {
		if iv.End != nil {
			d.TotalPauseSeconds += iv.Seconds
		} else {
			// An open trailing pause counts through to the production end
			// boundary: finishing while paused is pause-until-end, not a
			// discarded interval.
			d.TotalPauseSeconds += clampSeconds(iv.Start, end)
		}
	}
	if d.TotalPauseSeconds == 0 && totalPauseSeconds > 0 {
		d.TotalPauseSeconds = totalPauseSeconds
	}

	d.NetTirajeSeconds = d.GrossProductionSeconds - d.TotalPauseSeconds
	if d.NetTirajeSeconds < 0 {
		d.NetTirajeSeconds = 0
	}
	return d
}

// ComputeForJob derives times from the job's own timeline and aggregates,
// adding the data-integrity warning for a finished job whose timeline lost
// its production_end (the calculator then falls back to "now" as the end).
func ComputeForJob(job *domain.Job, now time.Time) DerivedTimes {
	d := Compute(job.Timeline, job.TotalPauseSeconds, now)
	if job.Status == domain.StatusFinished && d.Started && d.ProductionOpen {
		d.Warnings = append(d.Warnings, "finished job has no production_end; treating now as end")
	}
	return d
}

// LiveSetupSeconds is the running chronometer value for an open setup
// interval, or 0 when no setup is open. Closed intervals are in
// TotalSetupSeconds instead.
func (d DerivedTimes) LiveSetupSeconds(now time.Time) int64 {
	for _, iv := range d.SetupIntervals {
		if iv.End == nil {
			return clampSeconds(iv.Start, now)
		}
	}
	return 0
}

// matchIntervals pairs start/end events of one category in chronological
// order. A duplicate start while the category is already open is flagged and
// ignored; an end without an open start is flagged and ignored. An unmatched
// trailing start yields End == nil.
func matchIntervals(sorted []domain.TimelineEvent, start, end domain.EventType, warnings *[]string) []Interval {
	out := []Interval{}
	openIdx := -1
	for i := range sorted {
		ev := sorted[i]
		switch ev.Type {
		case start:
			if openIdx >= 0 {
				*warnings = append(*warnings, fmt.Sprintf("%s while interval already open", start))
				continue
			}
			out = append(out, Interval{Start: ev.Timestamp, Cause: ev.Cause()})
			openIdx = len(out) - 1
		case end:
			if openIdx < 0 {
				*warnings = append(*warnings, fmt.Sprintf("%s without open interval", end))
				continue
			}
			t := ev.Timestamp
			out[openIdx].End = &t
			out[openIdx].Seconds = clampSeconds(out[openIdx].Start, t)
			openIdx = -1
		}
	}
	return out
}

// clampSeconds floors the millisecond difference to whole seconds and clamps
// negatives (clock skew, bad data) to zero.
func clampSeconds(from, to time.Time) int64 {
	ms := to.Sub(from).Milliseconds()
	if ms <= 0 {
		return 0
	}
	return ms / 1000
}

// FormatHM renders a duration the way the report and chronometer widgets
// display it, clamping negatives to "00h 00m".
func FormatHM(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02dh %02dm", seconds/3600, (seconds%3600)/60)
}

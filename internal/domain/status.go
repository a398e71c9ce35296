package domain

// JobStatus is the single canonical status vocabulary. Any legacy wire
// spellings ("en cola", "en_pausa", ...) are translated at the HTTP boundary
// and never reach this package.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusInProgress JobStatus = "in_progress"
	StatusPaused     JobStatus = "paused"
	StatusFinished   JobStatus = "finished"
	StatusCancelled  JobStatus = "cancelled"
)

func (s JobStatus) Valid() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusPaused, StatusFinished, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle action may mutate the job,
// except reestablish on a cancelled job.
func (s JobStatus) Terminal() bool {
	return s == StatusFinished || s == StatusCancelled
}

// Live reports whether the job occupies its press.
func (s JobStatus) Live() bool {
	return s == StatusInProgress || s == StatusPaused
}

// StatusRank orders jobs for display when priority does not apply:
// live first, then queued, then finished, then cancelled.
func StatusRank(s JobStatus) int {
	switch s {
	case StatusInProgress:
		return 0
	case StatusPaused:
		return 1
	case StatusQueued:
		return 2
	case StatusFinished:
		return 3
	case StatusCancelled:
		return 4
	}
	return 5
}

type ColorMode string

const (
	ColorNone ColorMode = "none"
	Color4x0  ColorMode = "4x0"
	Color4x4  ColorMode = "4x4"
)

func (m ColorMode) Valid() bool {
	return m == ColorNone || m == Color4x0 || m == Color4x4
}

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleOperario   Role = "operario"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSupervisor || r == RoleOperario
}

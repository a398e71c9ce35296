package engine

// Error is a typed rejection reason. Every refused transition surfaces one of
// the four sentinel values below; callers are expected to match with errors.Is
// and re-sync from the authoritative job record.
type Error struct {
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

var (
	// ErrInvalidTransition: the action is not legal from the current status.
	ErrInvalidTransition = &Error{Code: "invalid_state", msg: "action not allowed from current job status"}
	// ErrMissingCause: a routine pause was requested without a cause.
	ErrMissingCause = &Error{Code: "missing_cause", msg: "pause requires a non-empty cause"}
	// ErrPressOccupied: the target press already hosts a live job.
	ErrPressOccupied = &Error{Code: "press_occupied", msg: "press already has a job in progress or paused"}
	// ErrImmutableFinished: finished and cancelled jobs accept no timeline mutation.
	ErrImmutableFinished = &Error{Code: "immutable_finished", msg: "job is finished or cancelled and cannot be mutated"}
)

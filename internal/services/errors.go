package services

import "errors"

var (
	ErrJobNotFound  = errors.New("job not found")
	ErrUserNotFound = errors.New("user not found")
	// ErrUnknownPress: the requested press is not in the plant catalog.
	ErrUnknownPress = errors.New("unknown press")
	// ErrDuplicateOrder: a job with the same OT code already exists.
	ErrDuplicateOrder = errors.New("order code already exists")
)

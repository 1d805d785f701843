package domain

import "errors"

// ErrInvalidID and related errors describe validation failures.
var (
	ErrInvalidID          = errors.New("invalid id")
	ErrInvalidGoalID      = errors.New("invalid goal id")
	ErrInvalidTitle       = errors.New("invalid title")
	ErrInvalidPriority    = errors.New("invalid priority")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidValue       = errors.New("invalid value")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrInvalidSessionType = errors.New("invalid session type")
	ErrInvalidRange       = errors.New("invalid date range")
)

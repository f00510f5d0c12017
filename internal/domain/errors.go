package domain

import "errors"

var (
	// ErrInvalidArgument reports an interpolation with no peer fix or a blend
	// factor outside [0, 1].
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPreconditionViolation reports a track-relative calculation on a fix
	// that lacks the data it needs, such as an along-track vector.
	ErrPreconditionViolation = errors.New("precondition violation")

	// ErrInvalidState reports a derived value requested from an absent field.
	ErrInvalidState = errors.New("invalid state")
)

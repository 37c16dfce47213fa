package irc

import (
	"errors"
	"fmt"
)

// Operational moderation errors. They are always caught at the command
// boundary and rendered as a user-visible reply; they never propagate
// past the moderation processor.
var (
	ErrModerationDisabled = errors.New("moderation disabled")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrUnknownServer      = errors.New("unknown server")
	ErrUnknownPlayer      = errors.New("unknown player")
	ErrAmbiguousPlayer    = errors.New("ambiguous player")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrBadSyntax          = errors.New("bad syntax")
	ErrInvalidDuration    = errors.New("invalid duration")
	ErrDurationTooLong    = errors.New("duration too long")
)

// commandError pairs an error kind with its user-visible reply text.
type commandError struct {
	kind error
	msg  string
}

func (e *commandError) Error() string { return e.msg }

func (e *commandError) Unwrap() error { return e.kind }

func modErr(kind error, format string, args ...any) error {
	return &commandError{kind: kind, msg: fmt.Sprintf(format, args...)}
}

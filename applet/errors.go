package applet

import (
	"errors"
	"fmt"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
)

var (
	// ErrAlreadyExists reports that the requested applet slot is already
	// claimed by another live connection.
	ErrAlreadyExists = errors.New("applet: applet already exists")

	// ErrInvalidSeparator reports that the server rejected the separator
	// value sent during creation.
	ErrInvalidSeparator = errors.New("applet: invalid separator value")

	// ErrOutOfRange reports point coordinates outside the grid.
	ErrOutOfRange = errors.New("applet: point coordinates out of range")
)

// ConnError wraps a transport-level failure: dial, send, or a stream that
// closed before the status byte arrived. It is always fatal to the in-flight
// operation; the handle never retries internally.
type ConnError struct {
	Op  string
	Err error
}

func (e *ConnError) Error() string {
	return fmt.Sprintf("applet: %s: %v", e.Op, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

// StatusError carries a nonzero status byte reported by the server, verbatim,
// so callers can branch on the server's reason for rejecting a command.
type StatusError struct {
	Code protocol.Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("applet: server status %d: %s", uint8(e.Code), e.Code)
}

// Is maps the construction-failure codes onto their sentinel errors so
// callers can use errors.Is without unpacking the code themselves.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAlreadyExists:
		return e.Code == protocol.StatusAppletExists
	case ErrInvalidSeparator:
		return e.Code == protocol.StatusBadSeparator
	}
	return false
}

// StatusCode extracts the raw server status byte from err, if err carries one.
func StatusCode(err error) (protocol.Status, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

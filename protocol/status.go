package protocol

import (
	"fmt"
	"io"
)

// Status is the single-byte result code the server returns after every
// command. The response side of the protocol is deliberately not JSON.
type Status uint8

const (
	StatusOK             Status = 0
	StatusReadFailed     Status = 10
	StatusDecodeFailed   Status = 20
	StatusParseFailed    Status = 21
	StatusBadAppNum      Status = 30
	StatusNotOwner       Status = 31
	StatusIllegalUpdate  Status = 32
	StatusCommandFailed  Status = 33
	StatusAppletExists   Status = 34
	StatusBadSeparator   Status = 40
	StatusUnknownFailure Status = 255
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "success"
	case StatusReadFailed:
		return "server failed to read stream data"
	case StatusDecodeFailed:
		return "server failed to decode stream data as text"
	case StatusParseFailed:
		return "server failed to parse text as JSON"
	case StatusBadAppNum:
		return "invalid applet number in command"
	case StatusNotOwner:
		return "applet not created by this connection"
	case StatusIllegalUpdate:
		return "illegal grid or bar update for applet"
	case StatusCommandFailed:
		return "internal command execution error"
	case StatusAppletExists:
		return "applet already exists"
	case StatusBadSeparator:
		return "invalid separator value at creation"
	case StatusUnknownFailure:
		return "unknown error"
	default:
		return fmt.Sprintf("unrecognised status %d", uint8(s))
	}
}

// WriteStatus writes the one-byte response for a command.
func WriteStatus(w io.Writer, st Status) error {
	_, err := w.Write([]byte{byte(st)})
	return err
}

// ReadStatus blocks until exactly one status byte arrives. A stream that
// closes before the byte is read surfaces as the underlying transport error.
func ReadStatus(r io.Reader) (Status, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return StatusUnknownFailure, err
	}
	return Status(buf[0]), nil
}

package protocol

import (
	"encoding/json"
	"errors"
	"io"
)

// Buffer geometry shared by client and server. The physical panel is 9 LEDs
// wide; each full applet owns a 10-row grid plus a 9-LED separator bar.
const (
	GridRows = 10
	GridCols = 9
	GridLen  = GridRows * GridCols
	BarLen   = 9

	// MaxAppNum is the highest addressable applet slot. Slot 0 carries only a
	// separator bar; slots 1-3 carry a grid and a bar.
	MaxAppNum = 3
)

// Separator tags carried by CreateApplet. Only SepVariable applets accept
// UpdateBar commands.
const (
	SepEmpty uint8 = iota
	SepSolid
	SepDotted
	SepVariable
)

// Opcode names a command the display server understands.
type Opcode string

const (
	OpCreateApplet Opcode = "CreateApplet"
	OpUpdateGrid   Opcode = "UpdateGrid"
	OpUpdateBar    Opcode = "UpdateBar"
)

// Command is the single request shape on the wire: one JSON object per
// command. The response is NOT JSON; the server answers every command with
// exactly one raw status byte (see ReadStatus).
type Command struct {
	Opcode     Opcode `json:"opcode"`
	AppNum     uint8  `json:"app_num"`
	Parameters Params `json:"parameters"`
}

var (
	ErrBadOpcode     = errors.New("protocol: unknown opcode")
	ErrBadAppNum     = errors.New("protocol: applet number out of range")
	ErrBadParamCount = errors.New("protocol: wrong parameter count for opcode")
)

// paramCount returns the exact number of parameters an opcode requires.
func paramCount(op Opcode) (int, bool) {
	switch op {
	case OpCreateApplet:
		return 1, true
	case OpUpdateGrid:
		return GridLen, true
	case OpUpdateBar:
		return BarLen, true
	default:
		return 0, false
	}
}

// Validate checks the command against the fixed per-opcode shapes. It does not
// check ownership or mode rules; those belong to the server.
func (c Command) Validate() error {
	want, ok := paramCount(c.Opcode)
	if !ok {
		return ErrBadOpcode
	}
	if c.AppNum > MaxAppNum {
		return ErrBadAppNum
	}
	if len(c.Parameters) != want {
		return ErrBadParamCount
	}
	return nil
}

// WriteCommand serialises the command as one JSON object onto w. The transport
// delineates messages; no extra framing is added.
func WriteCommand(w io.Writer, cmd Command) error {
	return json.NewEncoder(w).Encode(cmd)
}

// ReadCommand decodes the next JSON command from the stream decoder. The
// decoder must be reused across calls so buffered bytes are not lost.
func ReadCommand(dec *json.Decoder) (Command, error) {
	var cmd Command
	if err := dec.Decode(&cmd); err != nil {
		return Command{}, err
	}
	return cmd, nil
}

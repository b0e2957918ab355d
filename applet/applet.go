// Package applet is the client-side handle for one region of a segmented LED
// matrix panel driven by a separate display server. A Handle owns two local
// buffers, a 10x9 intensity grid and a 9-LED separator bar, and pushes them to
// the server over TCP with small JSON commands, reading back one status byte
// per command. Buffer mutation is purely local; nothing reaches the panel
// until WriteGrid or WriteBar is called.
package applet

import (
	"fmt"
	"net"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
)

// Separator selects how the server renders the 1x9 strip below an applet.
// Only Variable separators accept client-supplied bar contents.
type Separator uint8

const (
	SeparatorEmpty Separator = iota
	SeparatorSolid
	SeparatorDotted
	SeparatorVariable
)

func (s Separator) String() string {
	switch s {
	case SeparatorEmpty:
		return "empty"
	case SeparatorSolid:
		return "solid"
	case SeparatorDotted:
		return "dotted"
	case SeparatorVariable:
		return "variable"
	default:
		return fmt.Sprintf("separator(%d)", uint8(s))
	}
}

// Grid is the 10x9 main matrix of an applet, row-major, top row first.
type Grid [protocol.GridRows][protocol.GridCols]uint8

// Bar is the 9-LED separator strip of an applet.
type Bar [protocol.BarLen]uint8

// Handle is one claimed applet slot. It owns its connection exclusively:
// nothing else may read or write the stream. All operations are synchronous
// and the handle holds no locks; callers sharing a Handle across goroutines
// must synchronise externally.
type Handle struct {
	conn   net.Conn
	appNum uint8
	mode   Separator
	grid   Grid
	bar    Bar
}

// Open connects to the display server at addr and claims applet slot appNum
// by sending a CreateApplet command and waiting for the status byte. Both
// buffers start zeroed. The claim holds for the life of the connection;
// construction against an unreachable server fails with a *ConnError, and a
// slot already owned by a live connection fails with ErrAlreadyExists.
func Open(addr string, appNum uint8, mode Separator) (*Handle, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, &ConnError{Op: "dial", Err: err}
	}

	h := &Handle{conn: conn, appNum: appNum, mode: mode}
	if err := h.roundTrip(protocol.Command{
		Opcode:     protocol.OpCreateApplet,
		AppNum:     appNum,
		Parameters: []uint8{uint8(mode)},
	}); err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

// Dial is Open against localhost, matching the usual single-machine setup
// where the server drives the panel of the host it runs on.
func Dial(port uint16, appNum uint8, mode Separator) (*Handle, error) {
	return Open(fmt.Sprintf("127.0.0.1:%d", port), appNum, mode)
}

// Close releases the connection and with it the slot claim on the server.
func (h *Handle) Close() error {
	return h.conn.Close()
}

// AppNum returns the slot this handle claimed at construction.
func (h *Handle) AppNum() uint8 { return h.appNum }

// Mode returns the separator mode fixed at construction.
func (h *Handle) Mode() Separator { return h.mode }

// SetGrid replaces the whole grid buffer. Local only; no I/O.
func (h *Handle) SetGrid(g Grid) {
	h.grid = g
}

// SetPoint sets one cell: x is the column in [0,8], y the row in [0,9], both
// from the top-left. Out-of-range coordinates fail with ErrOutOfRange and
// leave the buffer untouched.
func (h *Handle) SetPoint(x, y int, value uint8) error {
	if x < 0 || x >= protocol.GridCols || y < 0 || y >= protocol.GridRows {
		return ErrOutOfRange
	}
	h.grid[y][x] = value
	return nil
}

// SetBar replaces the whole bar buffer. On a handle whose separator mode is
// not Variable this is a documented no-op: the write is silently discarded,
// since such a bar can never be pushed anyway. Callers needing to know should
// check Mode first.
func (h *Handle) SetBar(b Bar) {
	if h.mode != SeparatorVariable {
		return
	}
	h.bar = b
}

// GridBuffer returns the current grid contents.
func (h *Handle) GridBuffer() Grid { return h.grid }

// BarBuffer returns the current bar contents.
func (h *Handle) BarBuffer() Bar { return h.bar }

// WriteGrid pushes the grid buffer to the server in one blocking round-trip.
// The handle does not pre-empt slot capabilities locally: a grid write on
// slot 0 is sent anyway and comes back as the server's status 32, surfaced as
// a *StatusError. A transport failure surfaces as a *ConnError and leaves the
// local buffer unchanged, so the caller may simply call WriteGrid again after
// re-establishing a connection.
func (h *Handle) WriteGrid() error {
	params := make([]uint8, 0, protocol.GridLen)
	for _, row := range h.grid {
		params = append(params, row[:]...)
	}
	return h.roundTrip(protocol.Command{
		Opcode:     protocol.OpUpdateGrid,
		AppNum:     h.appNum,
		Parameters: params,
	})
}

// WriteBar pushes the bar buffer to the server in one blocking round-trip.
// As with WriteGrid, mode enforcement stays with the server: a bar write on a
// non-Variable applet is sent and rejected with status 32.
func (h *Handle) WriteBar() error {
	return h.roundTrip(protocol.Command{
		Opcode:     protocol.OpUpdateBar,
		AppNum:     h.appNum,
		Parameters: h.bar[:],
	})
}

// roundTrip sends one command and blocks for the single status byte. There
// are no timeouts; a stalled server blocks the caller, per the synchronous
// contract of the handle.
func (h *Handle) roundTrip(cmd protocol.Command) error {
	if err := protocol.WriteCommand(h.conn, cmd); err != nil {
		return &ConnError{Op: "send", Err: err}
	}
	st, err := protocol.ReadStatus(h.conn)
	if err != nil {
		return &ConnError{Op: "recv", Err: err}
	}
	if st != protocol.StatusOK {
		return &StatusError{Code: st}
	}
	return nil
}

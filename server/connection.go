package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
	"github.com/sigroot/FW-LED-Applet-Interface/server/store"
)

type connection struct {
	conn   net.Conn
	id     uint64
	mgr    *Manager
	panel  *Panel
	frames *store.Store
}

// serve answers commands until the client goes away. Every decoded command is
// answered with exactly one status byte; a stream we can no longer make sense
// of gets a final failure byte before the connection is dropped, since the
// decode offset is unrecoverable.
func (c *connection) serve() error {
	defer c.mgr.Release(c.id)

	dec := json.NewDecoder(c.conn)
	for {
		cmd, err := protocol.ReadCommand(dec)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			st := protocol.StatusReadFailed
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				st = protocol.StatusParseFailed
			}
			_ = protocol.WriteStatus(c.conn, st)
			return err
		}

		st := c.execute(cmd)
		logf("server: conn %d %s app=%d -> %d", c.id, cmd.Opcode, cmd.AppNum, uint8(st))
		if err := protocol.WriteStatus(c.conn, st); err != nil {
			return err
		}
	}
}

// execute applies one command and picks its status byte.
func (c *connection) execute(cmd protocol.Command) (st protocol.Status) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("server: conn %d panic executing %s: %v", c.id, cmd.Opcode, r)
			st = protocol.StatusUnknownFailure
		}
	}()

	if err := cmd.Validate(); err != nil {
		switch {
		case errors.Is(err, protocol.ErrBadOpcode):
			// An opcode outside the command enum is a parse failure, the
			// same as malformed JSON.
			return protocol.StatusParseFailed
		case errors.Is(err, protocol.ErrBadAppNum):
			return protocol.StatusBadAppNum
		default:
			return protocol.StatusCommandFailed
		}
	}

	switch cmd.Opcode {
	case protocol.OpCreateApplet:
		sep := cmd.Parameters[0]
		if st := c.mgr.Claim(cmd.AppNum, sep, c.id); st != protocol.StatusOK {
			return st
		}
		c.panel.SetMode(cmd.AppNum, sep)
		return protocol.StatusOK

	case protocol.OpUpdateGrid:
		if !c.mgr.OwnedBy(cmd.AppNum, c.id) {
			return protocol.StatusNotOwner
		}
		if cmd.AppNum == 0 {
			// Slot 0 has no grid.
			return protocol.StatusIllegalUpdate
		}
		c.panel.ApplyGrid(cmd.AppNum, cmd.Parameters)
		return c.persist(cmd.AppNum, store.KindGrid, cmd.Parameters)

	case protocol.OpUpdateBar:
		if !c.mgr.OwnedBy(cmd.AppNum, c.id) {
			return protocol.StatusNotOwner
		}
		if mode, ok := c.mgr.Mode(cmd.AppNum); !ok || mode != protocol.SepVariable {
			return protocol.StatusIllegalUpdate
		}
		c.panel.ApplyBar(cmd.AppNum, cmd.Parameters)
		return c.persist(cmd.AppNum, store.KindBar, cmd.Parameters)
	}
	return protocol.StatusCommandFailed
}

func (c *connection) persist(app uint8, kind string, payload []uint8) protocol.Status {
	if c.frames == nil {
		return protocol.StatusOK
	}
	if err := c.frames.Save(app, kind, payload); err != nil {
		log.Printf("server: conn %d persist %s for app %d: %v", c.id, kind, app, err)
		return protocol.StatusCommandFailed
	}
	return protocol.StatusOK
}

// Package server is the reference display server: it owns the panel state,
// enforces slot exclusivity across client connections, and answers every
// JSON command with a single status byte. A real deployment rasterises
// Panel.Snapshot to hardware; cmd/applet-sim draws it in a terminal instead.
package server

import (
	"context"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
	"github.com/sigroot/FW-LED-Applet-Interface/server/store"
)

var verboseLogging atomic.Bool

// SetVerboseLogging toggles per-command logging.
func SetVerboseLogging(v bool) {
	verboseLogging.Store(v)
}

func logf(format string, args ...any) {
	if verboseLogging.Load() {
		log.Printf(format, args...)
	}
}

// Server accepts applet connections on a TCP address and serves each one on
// its own goroutine.
type Server struct {
	addr     string
	mgr      *Manager
	panel    *Panel
	frames   *store.Store
	listener net.Listener
	quit     chan struct{}
	wg       sync.WaitGroup
	nextID   atomic.Uint64

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}
}

func NewServer(addr string, panel *Panel) *Server {
	if panel == nil {
		panel = NewPanel()
	}
	return &Server{
		addr:  addr,
		mgr:   NewManager(),
		panel: panel,
		quit:  make(chan struct{}),
		conns: make(map[net.Conn]struct{}),
	}
}

// SetFrameStore enables persistence: pushed frames are saved, and Start
// restores the stored frames into the panel. Must be called before Start.
func (s *Server) SetFrameStore(st *store.Store) {
	s.frames = st
}

func (s *Server) Panel() *Panel {
	return s.panel
}

func (s *Server) Manager() *Manager {
	return s.mgr
}

// Addr returns the bound listen address, useful when starting on ":0".
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Start() error {
	if err := s.restoreFrames(); err != nil {
		return err
	}
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) restoreFrames() error {
	if s.frames == nil {
		return nil
	}
	frames, err := s.frames.LoadAll()
	if err != nil {
		return err
	}
	for _, f := range frames {
		switch {
		case f.AppNum > protocol.MaxAppNum:
			log.Printf("server: skipping stored frame for unknown slot %d", f.AppNum)
		case f.Kind == store.KindGrid && len(f.Payload) == protocol.GridLen:
			s.panel.ApplyGrid(f.AppNum, f.Payload)
		case f.Kind == store.KindBar && len(f.Payload) == protocol.BarLen:
			s.panel.ApplyBar(f.AppNum, f.Payload)
		default:
			log.Printf("server: skipping malformed stored frame app=%d kind=%s len=%d",
				f.AppNum, f.Kind, len(f.Payload))
		}
	}
	if len(frames) > 0 {
		log.Printf("server: restored %d stored frames", len(frames))
	}
	return nil
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			continue
		}

		s.connsMu.Lock()
		s.conns[conn] = struct{}{}
		s.connsMu.Unlock()

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer func() {
				c.Close()
				s.connsMu.Lock()
				delete(s.conns, c)
				s.connsMu.Unlock()
			}()
			handler := &connection{
				conn:   c,
				id:     s.nextID.Add(1),
				mgr:    s.mgr,
				panel:  s.panel,
				frames: s.frames,
			}
			if err := handler.serve(); err != nil {
				logf("server: conn %d closed: %v", handler.id, err)
			}
		}(conn)
	}
}

func (s *Server) Stop(ctx context.Context) error {
	close(s.quit)
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.connsMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connsMu.Unlock()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

package server

import (
	"sync"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
)

// Physical panel geometry: 9 LEDs wide, 34 tall. Row 0 is applet 0's
// separator bar; applets 1-3 each stack a 10-row grid and a separator row
// below it.
const (
	PanelCols = protocol.GridCols
	PanelRows = 1 + (protocol.MaxAppNum)*(protocol.GridRows+1)

	// Intensity used for server-rendered (solid/dotted) separators.
	separatorLevel = 128
)

// Frame is one composited raster of the whole panel.
type Frame [PanelRows][PanelCols]uint8

// Panel is the server-side LED state: the last pushed grid and bar of every
// slot, plus each slot's separator mode for compositing. Updates fan out to a
// change channel so a renderer can redraw without polling.
type Panel struct {
	mu     sync.Mutex
	grids  [protocol.MaxAppNum + 1][protocol.GridRows][protocol.GridCols]uint8
	bars   [protocol.MaxAppNum + 1][protocol.BarLen]uint8
	modes  [protocol.MaxAppNum + 1]uint8
	notify chan struct{}
}

func NewPanel() *Panel {
	return &Panel{notify: make(chan struct{}, 1)}
}

// Changed signals after every applied update. The channel is coalescing: a
// slow consumer sees at least one signal for any burst of updates.
func (p *Panel) Changed() <-chan struct{} {
	return p.notify
}

func (p *Panel) signal() {
	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// SetMode records the separator mode a slot was claimed with.
func (p *Panel) SetMode(app uint8, sep uint8) {
	p.mu.Lock()
	p.modes[app] = sep
	p.mu.Unlock()
	p.signal()
}

// ApplyGrid replaces a slot's grid from 90 row-major wire values.
func (p *Panel) ApplyGrid(app uint8, values []uint8) {
	p.mu.Lock()
	for i, v := range values {
		p.grids[app][i/protocol.GridCols][i%protocol.GridCols] = v
	}
	p.mu.Unlock()
	p.signal()
}

// ApplyBar replaces a slot's separator bar from 9 wire values.
func (p *Panel) ApplyBar(app uint8, values []uint8) {
	p.mu.Lock()
	copy(p.bars[app][:], values)
	p.mu.Unlock()
	p.signal()
}

// Grid returns a copy of a slot's current grid, row-major.
func (p *Panel) Grid(app uint8) []uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint8, 0, protocol.GridLen)
	for _, row := range p.grids[app] {
		out = append(out, row[:]...)
	}
	return out
}

// Bar returns a copy of a slot's current bar.
func (p *Panel) Bar(app uint8) []uint8 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint8, protocol.BarLen)
	copy(out, p.bars[app][:])
	return out
}

// Snapshot composites the full 34x9 panel: grids verbatim, separators
// rendered according to each slot's mode.
func (p *Panel) Snapshot() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	var f Frame
	p.renderSeparator(&f, 0, 0)
	for app := uint8(1); app <= protocol.MaxAppNum; app++ {
		top := 1 + int(app-1)*(protocol.GridRows+1)
		for y := 0; y < protocol.GridRows; y++ {
			f[top+y] = p.grids[app][y]
		}
		p.renderSeparator(&f, app, top+protocol.GridRows)
	}
	return f
}

func (p *Panel) renderSeparator(f *Frame, app uint8, row int) {
	switch p.modes[app] {
	case protocol.SepSolid:
		for x := 0; x < PanelCols; x++ {
			f[row][x] = separatorLevel
		}
	case protocol.SepDotted:
		for x := 0; x < PanelCols; x += 2 {
			f[row][x] = separatorLevel
		}
	case protocol.SepVariable:
		f[row] = p.bars[app]
	}
}

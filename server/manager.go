package server

import (
	"sync"

	"github.com/sigroot/FW-LED-Applet-Interface/protocol"
)

// Manager tracks which connection owns which applet slot. A slot is claimed
// once per connection via CreateApplet and released when that connection goes
// away; the connection itself is the identity the server associates commands
// with.
type Manager struct {
	mu    sync.Mutex
	slots [protocol.MaxAppNum + 1]*slotState
}

type slotState struct {
	owner uint64
	mode  uint8
}

func NewManager() *Manager {
	return &Manager{}
}

// Claim binds a slot to the owning connection. The returned status is what
// the server answers the CreateApplet command with.
func (m *Manager) Claim(app uint8, sep uint8, owner uint64) protocol.Status {
	if app > protocol.MaxAppNum {
		return protocol.StatusBadAppNum
	}
	if sep > protocol.SepVariable {
		return protocol.StatusBadSeparator
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slots[app] != nil {
		return protocol.StatusAppletExists
	}
	m.slots[app] = &slotState{owner: owner, mode: sep}
	return protocol.StatusOK
}

// OwnedBy reports whether the slot is currently claimed by the connection.
func (m *Manager) OwnedBy(app uint8, owner uint64) bool {
	if app > protocol.MaxAppNum {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[app] != nil && m.slots[app].owner == owner
}

// Mode returns the separator mode the slot was claimed with.
func (m *Manager) Mode(app uint8) (uint8, bool) {
	if app > protocol.MaxAppNum {
		return 0, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slots[app] == nil {
		return 0, false
	}
	return m.slots[app].mode, true
}

// Release frees every slot held by the connection. The panel keeps whatever
// the applet last pushed; only the claim is dropped.
func (m *Manager) Release(owner uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, s := range m.slots {
		if s != nil && s.owner == owner {
			m.slots[i] = nil
		}
	}
}

// ActiveApplets returns the number of currently claimed slots.
func (m *Manager) ActiveApplets() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.slots {
		if s != nil {
			n++
		}
	}
	return n
}

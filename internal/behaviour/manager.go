// Package behaviour drives per-frame updates of simulation objects.
package behaviour

// Behaviour is anything that wants a callback every rendered frame and every
// fixed simulation tick.
type Behaviour interface {
	Start()
	Update()
	UpdateFixed()
}

type entry struct {
	behaviour Behaviour
	started   bool
}

// Manager calls Start once on each behaviour, right before its first update.
type Manager struct {
	entries []entry
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Add(b Behaviour) {
	m.entries = append(m.entries, entry{behaviour: b})
}

// Remove drops b. Order of the remaining behaviours is preserved.
func (m *Manager) Remove(b Behaviour) {
	for i := range m.entries {
		if m.entries[i].behaviour == b {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return
		}
	}
}

// Clear removes all behaviours from the manager
func (m *Manager) Clear() {
	m.entries = m.entries[:0]
}

// Len returns the number of registered behaviours.
func (m *Manager) Len() int {
	return len(m.entries)
}

func (m *Manager) UpdateAll() {
	for i := range m.entries {
		m.start(i)
		m.entries[i].behaviour.Update()
	}
}

func (m *Manager) UpdateAllFixed() {
	for i := range m.entries {
		m.start(i)
		m.entries[i].behaviour.UpdateFixed()
	}
}

func (m *Manager) start(i int) {
	if !m.entries[i].started {
		m.entries[i].behaviour.Start()
		m.entries[i].started = true
	}
}

// Package history provides a bounded undo/redo stack over snapshots of one
// document's text.
package history

import "sync"

const (
	// MaxEntries is the maximum number of undo steps kept per document.
	MaxEntries = 50
	// MinDelta is the length difference below which an edit is folded into
	// the previous history entry instead of creating a new one. Without it
	// every keystroke would become an undo step.
	MinDelta = 5
)

// Manager holds one document's undo/redo state. After Undo or Redo the next
// PushState is suppressed so that programmatic restoration of the text does
// not record itself as a fresh edit.
type Manager struct {
	mu               sync.Mutex
	past             []string
	future           []string
	current          string
	suppressNextPush bool
}

func NewManager(initial string) *Manager {
	return &Manager{current: initial}
}

// Current returns the latest known snapshot.
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// PushState records the transition to newText. The previous snapshot only
// enters the undo stack when it is non-empty, differs from newText and the
// length delta exceeds MinDelta; small contiguous edits batch into one entry.
// A fresh edit always invalidates the redo stack.
func (m *Manager) PushState(newText string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.suppressNextPush {
		m.suppressNextPush = false
		return
	}

	if m.current != "" && m.current != newText && lengthDelta(m.current, newText) > MinDelta {
		m.past = append(m.past, m.current)
		if len(m.past) > MaxEntries {
			// Evict oldest (FIFO from the bottom)
			copy(m.past, m.past[1:])
			m.past = m.past[:len(m.past)-1]
		}
	}

	m.current = newText
	m.future = m.future[:0]
}

// Undo steps back one snapshot. Returns false when there is nothing to undo.
func (m *Manager) Undo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return "", false
	}

	m.suppressNextPush = true
	m.future = append(m.future, m.current)
	m.current = m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	return m.current, true
}

// Redo steps forward one snapshot. Returns false when there is nothing to redo.
func (m *Manager) Redo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return "", false
	}

	m.suppressNextPush = true
	m.past = append(m.past, m.current)
	m.current = m.future[len(m.future)-1]
	m.future = m.future[:len(m.future)-1]
	return m.current, true
}

// PastLen reports the current undo depth.
func (m *Manager) PastLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past)
}

func lengthDelta(a, b string) int {
	d := len(a) - len(b)
	if d < 0 {
		d = -d
	}
	return d
}

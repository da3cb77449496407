package history

import (
	"fmt"
	"strings"
	"testing"
)

func TestPushStateThreshold(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		next        string
		wantPastLen int
	}{
		{
			name:        "large delta records an entry",
			current:     "hello",
			next:        "hello world, extended",
			wantPastLen: 1,
		},
		{
			name:        "small delta folds into previous entry",
			current:     "hello",
			next:        "hello!",
			wantPastLen: 0,
		},
		{
			name:        "delta exactly at threshold folds",
			current:     "abcdefg",
			next:        "abcdefghijkl", // delta 5 == MinDelta
			wantPastLen: 0,
		},
		{
			name:        "empty previous snapshot is never recorded",
			current:     "",
			next:        "a fresh paragraph of text",
			wantPastLen: 0,
		},
		{
			name:        "identical text records nothing",
			current:     "same",
			next:        "same",
			wantPastLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.current)
			m.PushState(tt.next)

			if got := m.PastLen(); got != tt.wantPastLen {
				t.Errorf("PastLen = %d, want %d", got, tt.wantPastLen)
			}
			if got := m.Current(); got != tt.next {
				t.Errorf("Current = %q, want %q", got, tt.next)
			}
		})
	}
}

func TestUndoRedoSequence(t *testing.T) {
	m := NewManager("")
	m.PushState("first draft")
	m.PushState("first draft, now much longer")
	m.PushState("first draft, now much longer, and longer still")

	if got := m.PastLen(); got != 2 {
		t.Fatalf("PastLen = %d, want 2", got)
	}

	text, ok := m.Undo()
	if !ok || text != "first draft, now much longer" {
		t.Errorf("Undo = (%q, %v), want intermediate snapshot", text, ok)
	}

	text, ok = m.Undo()
	if !ok || text != "first draft" {
		t.Errorf("Undo = (%q, %v), want first snapshot", text, ok)
	}

	if _, ok := m.Undo(); ok {
		t.Error("Undo on exhausted stack should report false")
	}

	text, ok = m.Redo()
	if !ok || text != "first draft, now much longer" {
		t.Errorf("Redo = (%q, %v), want intermediate snapshot", text, ok)
	}

	text, ok = m.Redo()
	if !ok || text != "first draft, now much longer, and longer still" {
		t.Errorf("Redo = (%q, %v), want latest snapshot", text, ok)
	}

	if _, ok := m.Redo(); ok {
		t.Error("Redo on exhausted stack should report false")
	}
}

func TestUndoSuppressesNextPush(t *testing.T) {
	m := NewManager("")
	m.PushState("original paragraph")
	m.PushState("original paragraph with an edit")

	restored, ok := m.Undo()
	if !ok {
		t.Fatal("Undo should succeed")
	}

	// The editor echoes the restored text back as a content change; it must
	// not become a new history entry.
	m.PushState(restored)

	if got := m.PastLen(); got != 0 {
		t.Errorf("PastLen after echoed restore = %d, want 0", got)
	}
	if _, ok := m.Redo(); !ok {
		t.Error("redo lineage should survive the echoed restore")
	}
}

func TestFreshEditClearsRedo(t *testing.T) {
	m := NewManager("")
	m.PushState("a reasonably long line")
	m.PushState("a reasonably long line with more words")

	if _, ok := m.Undo(); !ok {
		t.Fatal("Undo should succeed")
	}

	// A genuinely new edit (not the suppressed echo) invalidates redo.
	m.PushState("a reasonably long line")
	m.PushState("a completely different direction for the text")

	if _, ok := m.Redo(); ok {
		t.Error("Redo should be empty after a fresh edit")
	}
}

func TestBoundedDepth(t *testing.T) {
	m := NewManager("")
	for i := 0; i < MaxEntries+20; i++ {
		m.PushState(fmt.Sprintf("revision %d %s", i, strings.Repeat("x", i*10)))
	}

	if got := m.PastLen(); got != MaxEntries {
		t.Fatalf("PastLen = %d, want %d", got, MaxEntries)
	}

	// Walk all the way back; the last reachable snapshot is the oldest
	// retained one, not revision 0.
	var last string
	for {
		text, ok := m.Undo()
		if !ok {
			break
		}
		last = text
	}
	if !strings.HasPrefix(last, "revision 19 ") {
		t.Errorf("oldest retained snapshot = %q, want revision 19", last)
	}
}

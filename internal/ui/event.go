package ui

import tea "github.com/charmbracelet/bubbletea"

// uiEvent wraps the key press that triggered an action. Handlers deeper in
// the tree call StopPropagation so the root App skips its own binding for the
// same key.
type uiEvent struct {
	Key     tea.KeyMsg
	Row     int
	stopped bool
}

func newUIEvent(msg tea.KeyMsg) *uiEvent {
	return &uiEvent{Key: msg, Row: -1}
}

func (e *uiEvent) StopPropagation() {
	if e != nil {
		e.stopped = true
	}
}

func (e *uiEvent) Stopped() bool {
	return e != nil && e.stopped
}

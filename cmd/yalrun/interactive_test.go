package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestInteractiveModel_ExitStatus(t *testing.T) {
	m := newInteractiveModel(settings{}, []string{"prog.wasm", "a", "b"})
	if got := m.exitStatus(); got != 0 {
		t.Errorf("before any run: got %d", got)
	}
	if got := m.input.Value(); got != "a b" {
		t.Errorf("argument line: got %q", got)
	}

	tests := []struct {
		name string
		msg  runResultMsg
		want int
	}{
		{"exit status", runResultMsg{code: 7}, 7},
		{"trap", runResultMsg{code: 1}, 1},
		{"clean return", runResultMsg{code: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := m.Update(tt.msg)
			m = next.(*interactiveModel)
			if m.state != stateResult {
				t.Errorf("state: got %d", m.state)
			}
			if got := m.exitStatus(); got != tt.want {
				t.Errorf("exit status: got %d, want %d", got, tt.want)
			}
		})
	}

	// Returning to the editor keeps the status of the last run.
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*interactiveModel)
	if m.state != stateEdit {
		t.Errorf("state after enter: got %d", m.state)
	}
	m.Update(runResultMsg{code: 3})
	if got := m.exitStatus(); got != 3 {
		t.Errorf("exit status: got %d, want 3", got)
	}
}

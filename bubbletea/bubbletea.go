// Package bubbletea provides the terminal UI: a scrolling transcript, a
// prompt line that accepts text or slash commands, and a style guide editor.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/critic"
)

// TurnFunc runs one writer turn. onEvent is called for each streaming event.
// The function blocks until the reply completes or ctx is cancelled.
type TurnFunc func(ctx context.Context, session *critic.Session, settings critic.Settings, prompt string, onEvent func(critic.Event)) error

// StyleFunc extracts a style guide from the reference folder.
type StyleFunc func(ctx context.Context, settings critic.Settings) (string, error)

// ExportFunc writes the transcript of s to path.
type ExportFunc func(path string, s critic.Session) error

// SaveFunc persists the session snapshot.
type SaveFunc func(s critic.Session) error

// Handlers are the operations the UI triggers. Nil Save and Export disable
// persistence and /export.
type Handlers struct {
	Turn         TurnFunc
	ExtractStyle StyleFunc
	Export       ExportFunc
	Save         SaveFunc
}

// Run creates and runs the Bubble Tea program and returns the final model.
// It blocks until the program exits. Cancelling ctx quits the program.
func Run(ctx context.Context, m Model) (Model, error) {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		m = fm
	}
	return m, err
}

// StreamEventMsg wraps a streaming event for delivery to the model.
type StreamEventMsg struct {
	Event critic.Event
}

// TurnDoneMsg signals that a turn has completed.
type TurnDoneMsg struct {
	Err error
}

// StyleDoneMsg carries the result of a style guide extraction.
type StyleDoneMsg struct {
	Guide string
	Err   error
}

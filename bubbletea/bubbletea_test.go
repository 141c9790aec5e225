package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/critic"
	bt "github.com/fwojciec/critic/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model over session and sends a WindowSizeMsg to
// initialize the viewport.
func initModel(t *testing.T, h bt.Handlers, session *critic.Session) bt.Model {
	t.Helper()
	return initModelWithSize(t, h, session, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, h bt.Handlers, session *critic.Session, width, height int) bt.Model {
	t.Helper()
	if session == nil {
		session = &critic.Session{}
	}
	m := bt.New(h, session, testSettings(), critic.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// submit types text into the prompt and presses Enter.
func submit(t *testing.T, m bt.Model, text string) (bt.Model, tea.Cmd) {
	t.Helper()
	m.Input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}

func testSettings() critic.Settings {
	s := critic.DefaultSettings()
	s.APIKey = "test-key"
	return s
}

// nopTurn is a turn that does nothing.
func nopTurn(context.Context, *critic.Session, critic.Settings, string, func(critic.Event)) error {
	return nil
}

// replyTurn returns a turn that streams chunks and commits them the way the
// orchestrator does.
func replyTurn(chunks ...string) bt.TurnFunc {
	return func(_ context.Context, s *critic.Session, _ critic.Settings, prompt string, onEvent func(critic.Event)) error {
		s.Messages = append(s.Messages, critic.UserMessage(prompt))
		var reply string
		for _, c := range chunks {
			onEvent(critic.EventTextDelta{Delta: c})
			reply += c
		}
		s.Messages = append(s.Messages, critic.AssistantMessage(reply))
		return nil
	}
}

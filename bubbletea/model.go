package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/critic"
	"github.com/fwojciec/critic/command"
	"github.com/mattn/go-runewidth"
	"github.com/sourcegraph/conc"
)

var _ tea.Model = Model{}

// Model is the Bubble Tea model for the critic TUI.
type Model struct {
	// Input is the prompt line. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable transcript. Exported for test access.
	Viewport viewport.Model
	// Editor is the style guide editor opened by /style edit.
	Editor textarea.Model

	handlers Handlers
	session  *critic.Session
	settings critic.Settings
	theme    critic.Theme
	styles   Styles

	blocks     []MessageBlock
	blockFocus int // index of focused collapsible block (-1 = none)

	// Blocks at or after turnStart were streamed by the running turn and
	// are dropped if it fails.
	turnStart      int
	activeText     *AssistantTextBlock
	activeThinking *ThinkingBlock

	running   bool
	activity  string
	cancelled bool
	editing   bool
	cancel    context.CancelFunc
	eventCh   chan critic.Event
	doneCh    chan error
	jobs      *conc.WaitGroup
	err       error
	ready     bool
}

// New creates a TUI Model over session. settings is the starting point for
// the slash commands; the model owns its copy from here on.
func New(h Handlers, session *critic.Session, settings critic.Settings, theme critic.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask the editor, or /help"
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.Placeholder = "Describe the voice you are writing in..."

	return Model{
		Input:      ti,
		Editor:     ta,
		handlers:   h,
		session:    session,
		settings:   settings,
		theme:      theme,
		styles:     NewStyles(theme),
		blockFocus: -1,
		jobs:       conc.NewWaitGroup(),
	}
}

// Shutdown cancels the running turn or extraction, if any, and waits for
// its goroutine to return. Call it on the final model before touching the
// session again.
func (m Model) Shutdown() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.jobs != nil {
		m.jobs.Wait()
	}
}

// Running reports whether a turn or extraction is in flight.
func (m Model) Running() bool { return m.running }

// Editing reports whether the style guide editor is open.
func (m Model) Editing() bool { return m.editing }

// Err returns the last error shown, if any.
func (m Model) Err() error { return m.err }

// Settings returns the current settings, including changes made with slash
// commands.
func (m Model) Settings() critic.Settings { return m.settings }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		if m.editing {
			return m.handleEditorKey(msg)
		}
		return m.handleKey(msg)

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m = m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case TurnDoneMsg:
		return m.finishTurn(msg)

	case StyleDoneMsg:
		return m.finishStyle(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	switch {
	case m.editing:
		m.Editor, cmd = m.Editor.Update(msg)
		cmds = append(cmds, cmd)
	case !m.running:
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	if m.editing {
		b.WriteString(m.styles.Accent.Render("Style guide  (Ctrl+S save, Esc cancel)"))
		b.WriteString("\n")
		b.WriteString(m.styles.Editor.Render(m.Editor.View()))
	} else {
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	borderHeight := 2 // newlines between sections
	vpHeight := max(msg.Height-inputH-statusHeight-borderHeight, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderSession()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m = m.refresh()

	// The editor replaces the viewport: one header row plus its border.
	m.Editor.SetWidth(max(msg.Width-2, 1))
	m.Editor.SetHeight(max(vpHeight-3, 1))
	// textinput draws its cursor one cell past Width.
	m.Input.Width = max(msg.Width-1, 1)
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancelled = true
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.err = nil
		if command.IsCommand(text) {
			return m.runCommand(text)
		}
		return m.startTurn(text)

	case tea.KeyTab:
		if !m.running && m.blockFocus >= 0 {
			block, cmd := m.blocks[m.blockFocus].Update(ToggleMsg{})
			m.blocks[m.blockFocus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if !m.running {
			m = m.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// Character keys go to the prompt only; 'j' and 'k' would otherwise
	// scroll the viewport while typing.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
	return m, nil
}

func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyCtrlS:
		m.session.StyleGuide = strings.TrimSpace(m.Editor.Value())
		m = m.closeEditor()
		m = m.notice("Style guide saved.")
		m = m.save()
		cmd := m.Input.Focus()
		return m, cmd
	case tea.KeyEsc:
		m = m.closeEditor()
		m = m.notice("Edit discarded.")
		cmd := m.Input.Focus()
		return m, cmd
	}
	var cmd tea.Cmd
	m.Editor, cmd = m.Editor.Update(msg)
	return m, cmd
}

func (m Model) closeEditor() Model {
	m.editing = false
	m.Editor.Blur()
	m.Editor.Reset()
	return m
}

func (m Model) startTurn(prompt string) (tea.Model, tea.Cmd) {
	m.blocks = append(m.blocks, NewUserMessageBlock(prompt, m.styles))
	m.turnStart = len(m.blocks)
	m.activeText = nil
	m.activeThinking = nil
	m = m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.cancelled = false
	m.eventCh = make(chan critic.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true
	m.activity = "Generating..."
	m.Input.Blur()

	m.spawn(runTurn(m.handlers.Turn, ctx, m.session, m.settings, prompt, m.eventCh, m.doneCh))
	return m, listenForEvent(m.eventCh, m.doneCh)
}

func (m Model) finishTurn(msg TurnDoneMsg) (tea.Model, tea.Cmd) {
	cancelled := m.cancelled
	m = m.stopRunning()
	m.eventCh = nil
	m.doneCh = nil
	m.activeText = nil
	m.activeThinking = nil

	switch {
	case msg.Err == nil:
	case errors.Is(msg.Err, critic.ErrPersist):
		// The reply is committed; only the snapshot is stale.
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	case cancelled || errors.Is(msg.Err, context.Canceled):
		m.blocks = m.blocks[:m.turnStart]
		m = m.notice("Cancelled. The reply was discarded.")
	default:
		m.blocks = m.blocks[:m.turnStart]
		m.err = msg.Err
		m.blocks = append(m.blocks, NewErrorBlock(msg.Err, m.styles))
	}

	m = m.updateBlockFocus()
	m = m.refresh()
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	cmd, err := command.Parse(text)
	if err != nil {
		return m.fail(err), nil
	}

	switch c := cmd.(type) {
	case command.Setter:
		m = m.notice(c.Apply(&m.settings))
	case command.Clear:
		m.session.Clear()
		m.blocks = nil
		m.blockFocus = -1
		m = m.notice("Conversation cleared. The style guide was kept.")
		m = m.save()
	case command.Style:
		return m.runStyle(c.Action)
	case command.Export:
		if m.handlers.Export == nil {
			return m.fail(errors.New("export is not available")), nil
		}
		if err := m.handlers.Export(c.Path, *m.session); err != nil {
			return m.fail(fmt.Errorf("export %s: %w", c.Path, err)), nil
		}
		m = m.notice(fmt.Sprintf("Exported %d messages to %s", len(m.session.Messages), c.Path))
	case command.Help:
		m = m.notice(command.Usage)
	}
	return m, nil
}

func (m Model) runStyle(action command.StyleAction) (tea.Model, tea.Cmd) {
	switch action {
	case command.StyleShow:
		if m.session.StyleGuide == "" {
			return m.notice("No style guide yet. Run /style to extract one."), nil
		}
		m = m.notice("Style guide:")
		guide := NewAssistantTextBlock(m.theme)
		guide.Append(m.session.StyleGuide)
		m.blocks = append(m.blocks, guide)
		return m.refresh(), nil
	case command.StyleClear:
		m.session.StyleGuide = ""
		m = m.notice("Style guide cleared.")
		return m.save(), nil
	case command.StyleEdit:
		m.editing = true
		m.Editor.SetValue(m.session.StyleGuide)
		m.Input.Blur()
		cmd := m.Editor.Focus()
		return m, cmd
	}

	if m.handlers.ExtractStyle == nil {
		return m.fail(errors.New("style extraction is not available")), nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.cancelled = false
	m.running = true
	m.activity = "Reading the reference folder..."
	m.Input.Blur()
	resultCh := make(chan StyleDoneMsg, 1)
	m.spawn(extractStyle(m.handlers.ExtractStyle, ctx, m.settings, resultCh))
	return m, waitForStyle(resultCh)
}

func (m Model) finishStyle(msg StyleDoneMsg) (tea.Model, tea.Cmd) {
	cancelled := m.cancelled
	m = m.stopRunning()

	switch {
	case msg.Err == nil:
		m.session.StyleGuide = msg.Guide
		m = m.notice(fmt.Sprintf("Style guide updated (%d characters). /style show to read it.", len([]rune(msg.Guide))))
		m = m.save()
	case cancelled || errors.Is(msg.Err, context.Canceled):
		m = m.notice("Cancelled. The style guide was not changed.")
	default:
		m = m.fail(msg.Err)
	}
	cmd := m.Input.Focus()
	return m, cmd
}

func (m Model) stopRunning() Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.running = false
	m.cancel = nil
	m.cancelled = false
	m.activity = ""
	return m
}

// save persists the session. Failures are shown but never stop the program.
func (m Model) save() Model {
	if m.handlers.Save == nil {
		return m
	}
	if err := m.handlers.Save(*m.session); err != nil {
		return m.fail(fmt.Errorf("%w: %w", critic.ErrPersist, err))
	}
	return m
}

func (m Model) notice(text string) Model {
	m.blocks = append(m.blocks, NewNoticeBlock(text, m.styles))
	return m.refresh()
}

func (m Model) fail(err error) Model {
	m.err = err
	m.blocks = append(m.blocks, NewErrorBlock(err, m.styles))
	return m.refresh()
}

func (m Model) refresh() Model {
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m
}

// renderSession creates blocks from the loaded session's messages.
func (m Model) renderSession() Model {
	for _, msg := range m.session.Messages {
		switch msg.Role {
		case critic.RoleUser:
			m.blocks = append(m.blocks, NewUserMessageBlock(msg.Content, m.styles))
		case critic.RoleAssistant:
			b := NewAssistantTextBlock(m.theme)
			b.Append(msg.Content)
			m.blocks = append(m.blocks, b)
		}
	}
	return m
}

func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString(blockSeparator(m.blocks[i-1], block))
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// processEvent routes a streaming event to the turn's reply or reasoning
// block, creating it on first use.
func (m Model) processEvent(evt critic.Event) Model {
	switch e := evt.(type) {
	case critic.EventTextDelta:
		if m.activeText == nil {
			m.activeText = NewAssistantTextBlock(m.theme)
			m.blocks = append(m.blocks, m.activeText)
		}
		m.activeText.Append(e.Delta)
	case critic.EventThinkingDelta:
		if m.activeThinking == nil {
			m.activeThinking = NewThinkingBlock(m.styles)
			m.blocks = append(m.blocks, m.activeThinking)
			m = m.updateBlockFocus()
		}
		m.activeThinking.Append(e.Delta)
	}
	return m
}

// updateBlockFocus focuses the last collapsible block. Only the focused
// block responds to Tab.
func (m Model) updateBlockFocus() Model {
	m.blockFocus = -1
	for i := len(m.blocks) - 1; i >= 0; i-- {
		if _, ok := m.blocks[i].(*ThinkingBlock); ok {
			m.blockFocus = i
			return m
		}
	}
	return m
}

// cycleFocusPrev moves blockFocus to the previous collapsible block, wrapping around.
func (m Model) cycleFocusPrev() Model {
	start := m.blockFocus - 1
	if start < 0 {
		start = len(m.blocks) - 1
	}
	for i := range len(m.blocks) {
		idx := (start - i + len(m.blocks)) % len(m.blocks)
		if _, ok := m.blocks[idx].(*ThinkingBlock); ok {
			m.blockFocus = idx
			return m
		}
	}
	m.blockFocus = -1
	return m
}

func (m Model) statusLine() string {
	if m.running {
		return m.styles.Muted.Render(m.activity + "  Ctrl+C to cancel")
	}
	s := m.settings
	guide := "off"
	if m.session.StyleGuide != "" {
		guide = "on"
	}
	line := fmt.Sprintf("%s · %s · budget %d · draft %s · ref %s · guide %s",
		s.Model, s.Mode, s.Budget, folderLabel(s.DraftDir), folderLabel(s.ReferenceDir), guide)
	if s.APIKey == "" {
		line = "no API key (/key) · " + line
	}
	if w := m.Viewport.Width; w > 0 {
		line = runewidth.Truncate(line, w, "…")
	}
	return m.styles.Muted.Render(line)
}

func folderLabel(dir string) string {
	if dir == "" {
		return "-"
	}
	return filepath.Base(dir)
}

// spawn runs job on a goroutine tracked by jobs. It must not be deferred to
// a tea.Cmd: a queued Cmd could still start after Shutdown returns.
func (m Model) spawn(job func()) {
	m.jobs.Go(job)
}

// runTurn returns a job that runs the turn and signals completion.
func runTurn(run TurnFunc, ctx context.Context, session *critic.Session, settings critic.Settings, prompt string, eventCh chan<- critic.Event, doneCh chan<- error) func() {
	return func() {
		err := run(ctx, session, settings, prompt, func(e critic.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it reads the error from doneCh and returns TurnDoneMsg.
func listenForEvent(ch <-chan critic.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return TurnDoneMsg{Err: <-doneCh}
		}
		return StreamEventMsg{Event: evt}
	}
}

func extractStyle(fn StyleFunc, ctx context.Context, settings critic.Settings, resultCh chan<- StyleDoneMsg) func() {
	return func() {
		guide, err := fn(ctx, settings)
		resultCh <- StyleDoneMsg{Guide: guide, Err: err}
	}
}

func waitForStyle(resultCh <-chan StyleDoneMsg) tea.Cmd {
	return func() tea.Msg {
		return <-resultCh
	}
}

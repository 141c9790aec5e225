package bubbletea

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*ThinkingBlock)(nil)

// ThinkingBlock shows the model's reasoning behind a one-line header. It is
// display only; reasoning never enters the session.
//
// Gemini streams thought summaries as paragraphs headed by a bold line such
// as "**Weighing the pacing**". The collapsed header names the latest one so
// the reader can follow along without expanding the block.
type ThinkingBlock struct {
	content   strings.Builder
	collapsed bool
	styles    Styles
}

// NewThinkingBlock creates a ThinkingBlock that starts collapsed.
func NewThinkingBlock(styles Styles) *ThinkingBlock {
	return &ThinkingBlock{collapsed: true, styles: styles}
}

// Append adds a reasoning delta.
func (b *ThinkingBlock) Append(text string) {
	b.content.WriteString(text)
}

// Collapsed reports whether the body is hidden.
func (b *ThinkingBlock) Collapsed() bool { return b.collapsed }

// Heading returns the latest bold summary heading, or "" if none arrived.
func (b *ThinkingBlock) Heading() string {
	lines := strings.Split(b.content.String(), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if len(line) > 4 && strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**") {
			return strings.TrimSpace(line[2 : len(line)-2])
		}
	}
	return ""
}

func (b *ThinkingBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ThinkingBlock) View(width int) string {
	wrap := lipgloss.NewStyle().Width(width)
	header := b.styles.Thinking.Render(wrap.Render(b.header()))
	body := strings.TrimSpace(b.content.String())
	if b.collapsed || body == "" {
		return header
	}
	return header + "\n" + b.styles.Thinking.Render(wrap.Render(body))
}

func (b *ThinkingBlock) header() string {
	marker := "▶"
	if !b.collapsed {
		marker = "▼"
	}
	h := marker + " Reasoning"
	if b.collapsed {
		if heading := b.Heading(); heading != "" {
			h += ": " + heading
		}
	}
	if n := len(strings.Fields(b.content.String())); n > 0 {
		h += fmt.Sprintf(" · %d words", n)
	}
	return h
}

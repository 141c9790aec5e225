package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/critic"
	"github.com/fwojciec/critic/markdown"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders the editor's reply as markdown while it
// streams. Text up to the last paragraph break is stable: it is rendered
// once per width and cached, so each delta only re-renders the tail.
type AssistantTextBlock struct {
	raw   strings.Builder
	theme critic.Theme

	stable  string
	byWidth map[int]string
}

// NewAssistantTextBlock creates an empty reply block.
func NewAssistantTextBlock(theme critic.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{theme: theme, byWidth: make(map[int]string)}
}

// Append adds a text delta.
func (b *AssistantTextBlock) Append(text string) {
	b.raw.WriteString(text)
	b.advanceStable()
}

// Text returns everything appended so far.
func (b *AssistantTextBlock) Text() string {
	return b.raw.String()
}

func (b *AssistantTextBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	head := b.renderStable(width)
	tail := b.tail()
	if hasUnclosedFence(tail) {
		tail += "\n```"
	}
	if strings.TrimSpace(tail) == "" {
		return head
	}
	rendered := markdown.Render(tail, width, b.theme)
	if strings.TrimSpace(rendered) == "" {
		return head
	}
	if head == "" {
		return rendered
	}
	// Both halves are rendered as separate documents; rejoin them with
	// exactly one paragraph break.
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// advanceStable moves the stable prefix to the last paragraph break that is
// not inside an open code fence.
func (b *AssistantTextBlock) advanceStable() {
	raw := b.raw.String()
	end := len(raw)
	for {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= 0 {
			return
		}
		if prefix := raw[:i]; !hasUnclosedFence(prefix) {
			if prefix != b.stable {
				b.stable = prefix
				clear(b.byWidth)
			}
			return
		}
		end = i
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if s, ok := b.byWidth[width]; ok {
		return s
	}
	s := markdown.Render(b.stable, width, b.theme)
	b.byWidth[width] = s
	return s
}

func (b *AssistantTextBlock) tail() string {
	raw := b.raw.String()
	if b.stable == "" {
		return raw
	}
	return strings.TrimPrefix(raw, b.stable+"\n\n")
}

// hasUnclosedFence counts triple backticks. Backticks inside inline code
// spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}

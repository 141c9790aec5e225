package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var _ MessageBlock = (*UserMessageBlock)(nil)

// userBar marks every line of the writer's own messages.
const userBar = "▍ "

// UserMessageBlock renders the literal prompt the writer typed.
type UserMessageBlock struct {
	text   string
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	return &UserMessageBlock{text: text, styles: styles}
}

func (b *UserMessageBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *UserMessageBlock) View(width int) string {
	inner := width - lipgloss.Width(userBar)
	if inner < 1 {
		inner = 1
	}
	body := lipgloss.NewStyle().Width(inner).Render(b.text)
	lines := strings.Split(body, "\n")
	bar := b.styles.UserMsg.Render(userBar)
	for i, line := range lines {
		lines[i] = bar + strings.TrimRight(line, " ")
	}
	return strings.Join(lines, "\n")
}

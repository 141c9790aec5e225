package bubbletea

import tea "github.com/charmbracelet/bubbletea"

var _ MessageBlock = (*NoticeBlock)(nil)

// NoticeBlock is feedback from a slash command. It is never persisted.
type NoticeBlock struct {
	text   string
	styles Styles
}

// NewNoticeBlock creates a NoticeBlock.
func NewNoticeBlock(text string, styles Styles) *NoticeBlock {
	return &NoticeBlock{text: text, styles: styles}
}

func (b *NoticeBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *NoticeBlock) View(width int) string {
	return b.styles.Notice.Width(width).Render(b.text)
}

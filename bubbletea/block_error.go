package bubbletea

import tea "github.com/charmbracelet/bubbletea"

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a failed turn or command inline. The session keeps
// running after it.
type ErrorBlock struct {
	err    error
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(err error, styles Styles) *ErrorBlock {
	return &ErrorBlock{err: err, styles: styles}
}

// Err returns the wrapped error.
func (b *ErrorBlock) Err() error { return b.err }

func (b *ErrorBlock) Update(tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	return b.styles.Error.Width(width).Render("✗ " + b.err.Error())
}

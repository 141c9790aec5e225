package bubbletea_test

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/critic"
	bt "github.com/fwojciec/critic/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestUserMessageBlock_View(t *testing.T) {
	t.Parallel()

	t.Run("renders text behind a bar", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(critic.DefaultTheme())
		view := bt.NewUserMessageBlock("hello world", styles).View(80)
		assert.Contains(t, view, "▍")
		assert.Contains(t, view, "hello world")
	})

	t.Run("wraps long text and bars every line", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(critic.DefaultTheme())
		long := "short words that keep going and going beyond the viewport width easily"
		view := bt.NewUserMessageBlock(long, styles).View(30)
		lines := strings.Split(view, "\n")
		assert.Greater(t, len(lines), 1)
		for _, line := range lines {
			assert.Contains(t, line, "▍")
			assert.LessOrEqual(t, lipgloss.Width(line), 30)
		}
		assert.Contains(t, view, "easily")
	})

	t.Run("wide characters fit the width", func(t *testing.T) {
		t.Parallel()
		styles := bt.NewStyles(critic.DefaultTheme())
		view := bt.NewUserMessageBlock(strings.Repeat("그녀는 칼을 뽑았다 ", 6), styles).View(24)
		for _, line := range strings.Split(view, "\n") {
			assert.LessOrEqual(t, lipgloss.Width(line), 24)
		}
	})
}

// Package markdown renders model feedback to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
//
// Editors quote the draft back and strike out weak lines, so blockquotes and
// ~~strikethrough~~ are styled in addition to the usual blocks.
package markdown

import "github.com/fwojciec/critic"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// are rendered without reflow.
func Render(source string, width int, theme critic.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme)
	return r.render([]byte(source), width)
}

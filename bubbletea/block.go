package bubbletea

import tea "github.com/charmbracelet/bubbletea"

// MessageBlock is a renderable element in the transcript.
// Unlike tea.Model, View takes a width parameter so the root model
// controls layout and blocks are testable in isolation.
type MessageBlock interface {
	Update(tea.Msg) (MessageBlock, tea.Cmd)
	View(width int) string
}

// ToggleMsg tells a collapsible block to toggle its collapsed state.
type ToggleMsg struct{}

// blockSeparator returns the gap placed between two adjacent blocks.
// Reasoning sits directly on top of the reply it produced, and runs of
// command notices stay compact. Everything else gets a blank line.
func blockSeparator(prev, curr MessageBlock) string {
	_, prevThinking := prev.(*ThinkingBlock)
	_, currText := curr.(*AssistantTextBlock)
	if prevThinking && currText {
		return "\n"
	}
	_, prevNotice := prev.(*NoticeBlock)
	_, currNotice := curr.(*NoticeBlock)
	if prevNotice && currNotice {
		return "\n"
	}
	return "\n\n"
}

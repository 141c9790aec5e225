package bubbletea

// BlockSeparator exports blockSeparator for testing.
func BlockSeparator(prev, curr MessageBlock) string {
	return blockSeparator(prev, curr)
}

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// Blocks returns the transcript blocks.
func Blocks(m Model) []MessageBlock {
	return m.blocks
}

// SetRunning puts the model in a running state.
func SetRunning(m Model) Model {
	m.running = true
	m.activity = "Generating..."
	return m
}

// SetRunningWithCancel puts the model in a running state with a cancel
// function.
func SetRunningWithCancel(m Model, cancel func()) Model {
	m = SetRunning(m)
	m.cancel = cancel
	return m
}

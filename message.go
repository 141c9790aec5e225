package critic

import "strings"

// Message is one entry of the visible conversation. User messages hold the
// literal prompt the writer typed, not the assembled context.
type Message struct {
	Role    Role
	Content string
}

// UserMessage returns a Message with RoleUser.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns a Message with RoleAssistant.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Turn is one provider-format history entry. It records what was actually
// sent to and received from the model, so user turns carry the assembled
// prompt including sampled excerpts.
type Turn struct {
	Role  string
	Parts []string
}

// Text joins the turn's parts.
func (t Turn) Text() string {
	return strings.Join(t.Parts, "")
}

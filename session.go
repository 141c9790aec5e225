package critic

// Session is the state of one writing conversation. It is created empty or
// loaded from the snapshot file at startup and mutated by each turn.
type Session struct {
	Messages   []Message
	History    []Turn
	StyleGuide string
}

// Clear discards the whole conversation. The style guide survives.
func (s *Session) Clear() {
	s.Messages = nil
	s.History = nil
}

// commit records a completed exchange. prompt is the assembled prompt that
// was sent, reply the full assistant text.
func (s *Session) commit(prompt, reply string) {
	s.Messages = append(s.Messages, AssistantMessage(reply))
	s.History = append(s.History,
		Turn{Role: TurnRoleUser, Parts: []string{prompt}},
		Turn{Role: TurnRoleModel, Parts: []string{reply}},
	)
}

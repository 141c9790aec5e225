package critic_test

import (
	"testing"

	"github.com/fwojciec/critic"
	"github.com/stretchr/testify/assert"
)

func TestSession_Clear(t *testing.T) {
	t.Parallel()
	s := critic.Session{
		Messages:   []critic.Message{critic.UserMessage("hi"), critic.AssistantMessage("hello")},
		History:    []critic.Turn{{Role: critic.TurnRoleUser, Parts: []string{"hi"}}},
		StyleGuide: "Short paragraphs.",
	}

	s.Clear()

	assert.Empty(t, s.Messages)
	assert.Empty(t, s.History)
	assert.Equal(t, "Short paragraphs.", s.StyleGuide)
}

func TestMessageConstructors(t *testing.T) {
	t.Parallel()
	assert.Equal(t, critic.Message{Role: critic.RoleUser, Content: "a"}, critic.UserMessage("a"))
	assert.Equal(t, critic.Message{Role: critic.RoleAssistant, Content: "b"}, critic.AssistantMessage("b"))
}

func TestTurn_Text(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "", critic.Turn{}.Text())
	assert.Equal(t, "ab", critic.Turn{Parts: []string{"a", "b"}}.Text())
}

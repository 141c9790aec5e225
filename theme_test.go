package critic_test

import (
	"testing"

	"github.com/fwojciec/critic"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTheme(t *testing.T) {
	t.Parallel()

	theme := critic.DefaultTheme()

	assert.Equal(t, 4, theme.UserMsg)
	assert.Equal(t, 8, theme.Thinking)
	assert.Equal(t, 3, theme.Notice)
	assert.Equal(t, 1, theme.Error)
	assert.Equal(t, 2, theme.Success)
	assert.Equal(t, 8, theme.Muted)
	assert.Equal(t, 5, theme.Accent)
}

package help

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/maxking/archive-reader/internal/keys"
)

func TestViewShowsArchiveBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)
	out := m.View()

	assert.Contains(t, out, "Keyboard Reference")
	for _, label := range []string{"refresh", "notifications", "add mailing list", "quit"} {
		assert.Contains(t, out, label)
	}
}

func TestSetSizePropagatesToBindings(t *testing.T) {
	m := New(keys.DefaultKeyMap(), 100, 40)
	m.SetSize(60, 20)
	assert.Equal(t, 60, m.width)
	assert.Equal(t, 52, m.help.Width)
}

package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mfreitas/memflash/internal/session"
)

func TestManager_CreateWithDrop(t *testing.T) {
	m := session.NewManager()
	e, _ := newEngine(t, entry("a", 1))

	id := m.Create(e)
	require.NotEmpty(t, id)
	assert.Equal(t, 1, m.Len())

	err := m.With(id, func(got *session.Engine) error {
		assert.Same(t, e, got)
		return nil
	})
	require.NoError(t, err)

	m.Drop(id)
	assert.Equal(t, 0, m.Len())
	assert.Error(t, m.With(id, func(*session.Engine) error { return nil }))
}

func TestManager_UnknownSession(t *testing.T) {
	m := session.NewManager()

	err := m.With("nope", func(*session.Engine) error { return nil })
	assert.Error(t, err)
}

func TestManager_DropUnknownIsNoop(t *testing.T) {
	m := session.NewManager()
	m.Drop("nope")
	assert.Equal(t, 0, m.Len())
}

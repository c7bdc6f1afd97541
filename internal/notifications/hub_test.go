package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndBroadcast(t *testing.T) {
	hub := NewHub()

	a, err := hub.Register("u1", nil)
	require.NoError(t, err)
	b, err := hub.Register("u1", nil)
	require.NoError(t, err)
	_, err = hub.Register("u2", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, hub.Connections())
	assert.Equal(t, 2, hub.Broadcast("u1", []byte("hello")))
	assert.Equal(t, "hello", string(<-a.Send))
	assert.Equal(t, "hello", string(<-b.Send))
	assert.Zero(t, hub.Broadcast("nobody", []byte("x")))
}

func TestHub_UserConnectionLimit(t *testing.T) {
	hub := NewHub()
	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register("busy", nil)
		require.NoError(t, err)
	}
	_, err := hub.Register("busy", nil)
	assert.ErrorIs(t, err, ErrUserFull)
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)

	assert.False(t, hub.IsOnline("u1"))
	assert.Zero(t, hub.Connections())
	assert.False(t, c.TrySend([]byte("late")))
}

func TestHub_BufferFullDrops(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	for i := 0; i < cap(c.Send); i++ {
		require.True(t, c.TrySend([]byte("x")))
	}
	assert.False(t, c.TrySend([]byte("overflow")))
}

func TestHub_Shutdown(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	_, open := <-c.Send
	assert.False(t, open)
	_, err = hub.Register("u1", nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

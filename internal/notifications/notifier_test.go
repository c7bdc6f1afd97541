package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishUser_NilRedis(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishUser(context.Background(), "u1", NewEvent(EventReviewReceived, nil)))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:abc", UserChannel("abc"))

	id, ok := ParseUserChannel("notifications:user:abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = ParseUserChannel("notifications:user:")
	assert.False(t, ok)
	_, ok = ParseUserChannel("chat:conv:1")
	assert.False(t, ok)
}

func TestNotifier_SubscriberDeliversToHub(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	client, err := hub.Register("seller-1", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, n))
	require.NoError(t, n.PublishUser(ctx, "seller-1", NewEvent(EventReviewReceived, map[string]any{"rating": 5})))

	select {
	case msg := <-client.Send:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		assert.Equal(t, EventReviewReceived, ev.Type)
		assert.NotEmpty(t, ev.ID)
		assert.EqualValues(t, 5, ev.Payload["rating"])
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

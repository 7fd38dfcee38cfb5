package feed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisBroker_RelaysToHub(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	defer client.Close()

	hub := NewHub()
	sub := hub.Subscribe("user-1")
	defer hub.Unsubscribe(sub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := NewRedisBroker(client, hub)
	require.NoError(t, broker.Start(ctx))

	c, err := NewChange(Delete, "jobs", "user-1", nil, map[string]any{"id": 7})
	require.NoError(t, err)
	require.NoError(t, broker.Publish(ctx, c))

	select {
	case got := <-sub:
		assert.Equal(t, Delete, got.Type)
		assert.Equal(t, "jobs", got.Table)
		assert.JSONEq(t, `{"id":7}`, string(got.Old))
	case <-time.After(2 * time.Second):
		t.Fatal("change was not relayed")
	}
}

package broadcast_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unbirthdayhatter/socialmorpho/broadcast"
	"github.com/unbirthdayhatter/socialmorpho/cache"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	"go.uber.org/zap"
)

func newHub(t *testing.T, feedSize int) (*broadcast.Hub, cache.PubSub) {
	t.Helper()
	c, err := cache.NewCache(cache.CacheConfig{})
	require.NoError(t, err)
	ps, err := cache.NewPubSub(cache.CacheConfig{})
	require.NoError(t, err)
	return broadcast.New(c, ps, feedSize, zap.NewNop()), ps
}

func TestProgressAccepted_FeedAndPublish(t *testing.T) {
	hub, ps := newHub(t, 5)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgCh, unsub, err := ps.Subscribe(ctx, broadcast.ProgressChannel)
	require.NoError(t, err)
	defer unsub()

	hub.ProgressAccepted(&quest.ProgressUpdate{QuestID: 1, QuestTitle: "Warm Welcome", Current: 1, Goal: 2})

	feed, err := hub.RecentFeed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	var u quest.ProgressUpdate
	require.NoError(t, json.Unmarshal([]byte(feed[0]), &u))
	assert.Equal(t, int64(1), u.QuestID)

	select {
	case msg := <-msgCh:
		assert.Contains(t, msg.Payload, "Warm Welcome")
	case <-time.After(time.Second):
		t.Fatal("no progress message published")
	}
}

func TestProgressAccepted_FeedCapped(t *testing.T) {
	hub, _ := newHub(t, 3)

	for i := int64(1); i <= 5; i++ {
		hub.ProgressAccepted(&quest.ProgressUpdate{QuestID: i, Goal: 1, Current: 1})
	}

	feed, err := hub.RecentFeed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)

	// Newest first.
	var u quest.ProgressUpdate
	require.NoError(t, json.Unmarshal([]byte(feed[0]), &u))
	assert.Equal(t, int64(5), u.QuestID)
}

func TestEventCounted_Leaderboard(t *testing.T) {
	hub, _ := newHub(t, 10)

	hub.EventCounted("hug", 3)
	hub.EventCounted("wave", 7)
	hub.EventCounted("dote", 1)

	top, err := hub.TopEvents(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, broadcast.EventCount{EventKey: "wave", Count: 7}, top[0])
	assert.Equal(t, broadcast.EventCount{EventKey: "hug", Count: 3}, top[1])
}

// Package broadcast fans accepted progress out of the engine: a capped
// recent-activity feed, the lifetime emote leaderboard and the live
// pub/sub channel the SSE stream rides on. Every operation is
// best-effort; a cache hiccup is logged and play continues.
package broadcast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/unbirthdayhatter/socialmorpho/cache"
	"github.com/unbirthdayhatter/socialmorpho/game/quest"
	"go.uber.org/zap"
)

const (
	FeedKey         = "feed:progress"
	LeaderboardKey  = "leaderboard:events"
	ProgressChannel = "progress"
)

// EventCount is one leaderboard row.
type EventCount struct {
	EventKey string `json:"event_key"`
	Count    int    `json:"count"`
}

// Hub implements the engine's Broadcaster over the cache and pub/sub.
type Hub struct {
	cache    cache.Cache
	pubsub   cache.PubSub
	feedSize int64
	logger   *zap.Logger
}

// New creates a Hub. feedSize caps the recent-activity list.
func New(c cache.Cache, ps cache.PubSub, feedSize int, logger *zap.Logger) *Hub {
	if feedSize <= 0 {
		feedSize = 100
	}
	return &Hub{cache: c, pubsub: ps, feedSize: int64(feedSize), logger: logger}
}

// ProgressAccepted records an accepted tick on the feed and publishes it
// to live subscribers.
func (h *Hub) ProgressAccepted(u *quest.ProgressUpdate) {
	payload, err := json.Marshal(u)
	if err != nil {
		h.logger.Error("progress encode failed", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := h.cache.LPush(ctx, FeedKey, string(payload)); err != nil {
		h.logger.Warn("feed push failed", zap.Error(err))
	}
	if err := h.cache.LTrim(ctx, FeedKey, 0, h.feedSize-1); err != nil {
		h.logger.Warn("feed trim failed", zap.Error(err))
	}
	if err := h.pubsub.Publish(ctx, ProgressChannel, string(payload)); err != nil {
		h.logger.Warn("progress publish failed", zap.Error(err))
	}
}

// EventCounted keeps the lifetime leaderboard in step with the ledger.
func (h *Hub) EventCounted(key string, lifetime int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.cache.ZAdd(ctx, LeaderboardKey, float64(lifetime), key); err != nil {
		h.logger.Warn("leaderboard update failed", zap.String("event_key", key), zap.Error(err))
	}
}

// RecentFeed returns up to n most recent progress payloads, newest first.
func (h *Hub) RecentFeed(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 || n > h.feedSize {
		n = h.feedSize
	}
	return h.cache.LRange(ctx, FeedKey, 0, n-1)
}

// TopEvents returns the n highest lifetime event counts.
func (h *Hub) TopEvents(ctx context.Context, n int64) ([]EventCount, error) {
	members, err := h.cache.ZRevRange(ctx, LeaderboardKey, 0, n-1)
	if err != nil {
		return nil, err
	}
	out := make([]EventCount, 0, len(members))
	for _, m := range members {
		score, err := h.cache.ZScore(ctx, LeaderboardKey, m)
		if err != nil {
			continue
		}
		out = append(out, EventCount{EventKey: m, Count: int(score)})
	}
	return out, nil
}

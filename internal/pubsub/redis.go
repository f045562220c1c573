package pubsub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"gamehub/internal/game"
	"gamehub/internal/logger"
)

// RedisBroker routes events through Redis pub/sub so that subscribers
// on other instances see transitions made here. Updates use one channel
// per game; errors use one channel per (game, player) pair, which keeps
// rejections scoped to the offending player.
type RedisBroker struct {
	client *redis.Client
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(ctx context.Context, addr string) (*RedisBroker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &RedisBroker{client: client}, nil
}

func updateChannel(gameID string) string {
	return "gamehub:game:" + gameID
}

func errorChannel(gameID, playerID string) string {
	return "gamehub:game:" + gameID + ":player:" + playerID
}

// PublishUpdate publishes the snapshot on the game's update channel.
func (b *RedisBroker) PublishUpdate(ctx context.Context, snap game.Snapshot) error {
	ev, err := updateEvent(snap)
	if err != nil {
		return err
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, updateChannel(snap.GameID), data).Err()
}

// PublishError publishes the rejection on the player's error channel.
func (b *RedisBroker) PublishError(ctx context.Context, gameID, playerID string, reason error) error {
	data, err := json.Marshal(errorEvent(gameID, playerID, reason))
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, errorChannel(gameID, playerID), data).Err()
}

// Subscribe listens on the game's update channel and the player's error
// channel until cancel is called.
func (b *RedisBroker) Subscribe(ctx context.Context, gameID, playerID string) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, updateChannel(gameID), errorChannel(gameID, playerID))
	// Force the subscription to be established before returning.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Warn("pubsub: bad event payload", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case out <- ev:
			default:
			}
		}
	}()

	cancel := func() { sub.Close() }
	return out, cancel, nil
}

// Close releases the Redis connection.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

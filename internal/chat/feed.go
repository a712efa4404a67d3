package chat

import (
	"context"
	"encoding/json"
	"log"

	"motomarket/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventHandler receives change notifications. It may be invoked after the
// consumer has logically moved on; consumers guard with a liveness check
// since unsubscribing is best-effort and can race in-flight deliveries.
type EventHandler func(models.Event)

// Feed is the realtime change-notification boundary. Per-room delivery
// matches server commit order; there is no cross-room ordering guarantee.
type Feed interface {
	// SubscribeRoom delivers events for a single room.
	SubscribeRoom(roomID string, fn EventHandler) (unsubscribe func(), err error)
	// SubscribeAll delivers events for every room (inbox view).
	SubscribeAll(fn EventHandler) (unsubscribe func(), err error)
}

// RedisFeed implements Feed over Redis pub/sub channels, one channel per
// room. Connection drops are not surfaced: go-redis re-issues the
// subscriptions on reconnect, so a drop degrades to a gap, never a crash.
type RedisFeed struct {
	rdb *redis.Client
	ctx context.Context
}

func NewRedisFeed(rdb *redis.Client) *RedisFeed {
	return &RedisFeed{rdb: rdb, ctx: context.Background()}
}

func (f *RedisFeed) SubscribeRoom(roomID string, fn EventHandler) (func(), error) {
	pubsub := f.rdb.Subscribe(f.ctx, models.RoomChannelPrefix+roomID)
	return f.start(pubsub, fn)
}

func (f *RedisFeed) SubscribeAll(fn EventHandler) (func(), error) {
	pubsub := f.rdb.PSubscribe(f.ctx, models.RoomChannelPattern)
	return f.start(pubsub, fn)
}

func (f *RedisFeed) start(pubsub *redis.PubSub, fn EventHandler) (func(), error) {
	// Wait for the subscription confirmation so setup failures surface to
	// the caller instead of silently dropping every event.
	if _, err := pubsub.Receive(f.ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	go func() {
		for msg := range pubsub.Channel() {
			var ev models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode feed event: %v", err)
				continue
			}
			fn(ev)
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}

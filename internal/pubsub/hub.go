package pubsub

import (
	"context"
	"sync"

	"gamehub/internal/game"
)

// Hub is the in-process broker for single-instance deployments. Slow
// subscribers have events dropped rather than blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[int]*hubSub // gameID -> subscription ID
	nextID int
}

type hubSub struct {
	playerID string
	ch       chan Event
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]*hubSub)}
}

// Subscribe registers playerID as a watcher of gameID.
func (h *Hub) Subscribe(ctx context.Context, gameID, playerID string) (<-chan Event, func(), error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[gameID] == nil {
		h.subs[gameID] = make(map[int]*hubSub)
	}
	id := h.nextID
	h.nextID++
	sub := &hubSub{playerID: playerID, ch: make(chan Event, 64)}
	h.subs[gameID][id] = sub

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subs[gameID][id]; ok {
			delete(h.subs[gameID], id)
			if len(h.subs[gameID]) == 0 {
				delete(h.subs, gameID)
			}
			close(s.ch)
		}
	}
	return sub.ch, cancel, nil
}

// PublishUpdate sends the snapshot to every subscriber of the game.
func (h *Hub) PublishUpdate(ctx context.Context, snap game.Snapshot) error {
	ev, err := updateEvent(snap)
	if err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[snap.GameID] {
		select {
		case sub.ch <- ev:
		default:
			// drop if the subscriber's buffer is full
		}
	}
	return nil
}

// PublishError sends the rejection only to playerID's subscriptions.
func (h *Hub) PublishError(ctx context.Context, gameID, playerID string, reason error) error {
	ev := errorEvent(gameID, playerID, reason)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[gameID] {
		if sub.playerID != playerID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
	return nil
}

// Package pubsub is the notification boundary: after every state
// transition the session manager publishes either the new snapshot to
// everyone watching that game, or a rejection to the one player whose
// action was refused.
package pubsub

import (
	"context"
	"encoding/json"

	"gamehub/internal/game"
)

// Event types.
const (
	TypeUpdate = "update"
	TypeError  = "error"
)

// Event is one message delivered to a game's subscribers.
type Event struct {
	Type     string          `json:"type"`
	GameID   string          `json:"gameId"`
	PlayerID string          `json:"playerId,omitempty"` // error target
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// Publisher is the outbound half of the boundary.
type Publisher interface {
	// PublishUpdate fans the snapshot out to every subscriber of the
	// game.
	PublishUpdate(ctx context.Context, snap game.Snapshot) error

	// PublishError delivers a rejection to playerID's subscriptions
	// only, never to the other participants.
	PublishError(ctx context.Context, gameID, playerID string, reason error) error
}

// Subscriber is the inbound half: the connection layer subscribes once
// per (game, player) pair. The returned cancel function releases the
// subscription and closes the channel.
type Subscriber interface {
	Subscribe(ctx context.Context, gameID, playerID string) (<-chan Event, func(), error)
}

// Broker combines both halves.
type Broker interface {
	Publisher
	Subscriber
}

func updateEvent(snap game.Snapshot) (Event, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: TypeUpdate, GameID: snap.GameID, Snapshot: data}, nil
}

func errorEvent(gameID, playerID string, reason error) Event {
	return Event{
		Type:     TypeError,
		GameID:   gameID,
		PlayerID: playerID,
		Error:    reason.Error(),
	}
}

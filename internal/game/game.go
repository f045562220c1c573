package game

import "encoding/json"

// Status is a session's lifecycle phase. Values are stable: they appear
// verbatim in snapshots, the wire protocol, and the durable store.
type Status string

const (
	StatusWaiting    Status = "WAITING_TO_START"
	StatusInProgress Status = "IN_PROGRESS"
	StatusOver       Status = "OVER"
)

// Info describes a game type for the lobby.
type Info struct {
	Name    string `json:"name"`
	Players int    `json:"players"` // seats required before play starts
}

// Move is one participant's proposed action. The payload format is owned
// by the game type's engine.
type Move struct {
	PlayerID string          `json:"playerId"`
	Payload  json.RawMessage `json:"payload"`
}

// State is one game's pure progress data. Implementations are immutable
// values: transitions return a new State and never modify the receiver,
// so a reader always sees a fully-formed state.
type State interface {
	Status() Status
	Winners() []string
}

// Engine is one game type's rule set, expressed as pure transition
// functions over State. An Engine holds no per-session data; a single
// instance serves every session of its type.
//
// The players slice is the session's seating order at the time of the
// call; for turn-based games players[len(moves)%len(players)] owns the
// next move. All rejections are the sentinel errors from errors.go
// (possibly wrapped with detail) so callers can classify them with
// errors.Is.
type Engine interface {
	Info() Info

	// NewState returns the initial state for a fresh session.
	NewState() State

	// Join admits playerID into a waiting session. players holds the
	// participants seated before the join.
	Join(st State, players []string, playerID string) (State, error)

	// Leave removes playerID. Leaving a game in progress is a forfeit:
	// the returned state is OVER with the remaining players as winners.
	// Leaving a finished game returns the state unchanged.
	Leave(st State, players []string, playerID string) (State, error)

	// ApplyMove validates mv against st and returns the successor state.
	ApplyMove(st State, players []string, mv Move) (State, error)
}

// Snapshot is an immutable, externally-shareable copy of a session's
// current state, safe to serialize or publish.
type Snapshot struct {
	GameID   string   `json:"gameId"`
	GameType string   `json:"gameType"`
	Players  []string `json:"players"`
	State    State    `json:"state"`
}

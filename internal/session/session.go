package session

import (
	"sync"

	"gamehub/internal/game"
)

// Session is one live game: a stable ID, the seated players, and the
// current state. State transitions go through the game's engine; the
// session holds the current state value and swaps it on success, so the
// turn check and the move append are a single critical section.
type Session struct {
	mu       sync.Mutex
	id       string
	gameType string
	engine   game.Engine
	players  []string
	state    game.State
}

// New creates a session in the waiting state.
func New(id string, engine game.Engine) *Session {
	return &Session{
		id:       id,
		gameType: engine.Info().Name,
		engine:   engine,
		state:    engine.NewState(),
	}
}

func (s *Session) ID() string       { return s.id }
func (s *Session) GameType() string { return s.gameType }

// Join seats playerID and returns the resulting snapshot.
func (s *Session) Join(playerID string) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinLocked(playerID)
}

func (s *Session) joinLocked(playerID string) (game.Snapshot, error) {
	next, err := s.engine.Join(s.state, s.players, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	s.players = append(s.players, playerID)
	s.state = next
	return s.snapshotLocked(), nil
}

// Leave vacates playerID's seat and returns the resulting snapshot.
// Leaving a game in progress forfeits it.
func (s *Session) Leave(playerID string) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.leaveLocked(playerID)
}

func (s *Session) leaveLocked(playerID string) (game.Snapshot, error) {
	next, err := s.engine.Leave(s.state, s.players, playerID)
	if err != nil {
		return game.Snapshot{}, err
	}
	for i, id := range s.players {
		if id == playerID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			break
		}
	}
	s.state = next
	return s.snapshotLocked(), nil
}

// ApplyMove validates mv through the engine and, on success, swaps in
// the successor state and returns the resulting snapshot. On rejection
// the state is untouched.
func (s *Session) ApplyMove(mv game.Move) (game.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyMoveLocked(mv)
}

func (s *Session) applyMoveLocked(mv game.Move) (game.Snapshot, error) {
	next, err := s.engine.ApplyMove(s.state, s.players, mv)
	if err != nil {
		return game.Snapshot{}, err
	}
	s.state = next
	return s.snapshotLocked(), nil
}

// Snapshot returns a read-only copy of the current state.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() game.Snapshot {
	players := make([]string, len(s.players))
	copy(players, s.players)
	return game.Snapshot{
		GameID:   s.id,
		GameType: s.gameType,
		Players:  players,
		State:    s.state,
	}
}

// Package nim implements the rules of Nim: two players alternate removing
// 1 to 3 objects from a shared pile of 21; whoever takes the last object
// loses.
package nim

import (
	"encoding/json"
	"fmt"

	"gamehub/internal/game"
)

const (
	// StartingObjects is the pile size at the start of every game.
	StartingObjects = 21

	minTake = 1
	maxTake = 3

	players = 2
)

// MovePayload is the wire format of one Nim move.
type MovePayload struct {
	NumObjects int `json:"numObjects"`
}

// State is a Nim game's progress. It is a value type: transitions return
// a fresh State and never touch the old one. RemainingObjects is always
// recomputed from the move record, never mutated on its own.
type State struct {
	GameStatus       game.Status   `json:"status"`
	Moves            []MovePayload `json:"moves"`
	RemainingObjects int           `json:"remainingObjects"`
	WinnerIDs        []string      `json:"winners,omitempty"`
}

func (s State) Status() game.Status { return s.GameStatus }
func (s State) Winners() []string   { return s.WinnerIDs }

// Engine implements game.Engine for Nim.
type Engine struct{}

func (Engine) Info() game.Info {
	return game.Info{Name: "Nim", Players: players}
}

func (Engine) NewState() game.State {
	return State{
		GameStatus:       game.StatusWaiting,
		RemainingObjects: StartingObjects,
	}
}

func (Engine) Join(st game.State, seated []string, playerID string) (game.State, error) {
	s := st.(State)
	if s.GameStatus != game.StatusWaiting {
		return nil, game.ErrAlreadyStarted
	}
	for _, id := range seated {
		if id == playerID {
			return nil, game.ErrDuplicatePlayer
		}
	}
	if len(seated) >= players {
		return nil, game.ErrGameFull
	}
	if len(seated)+1 == players {
		s.GameStatus = game.StatusInProgress
	}
	return s, nil
}

func (Engine) Leave(st game.State, seated []string, playerID string) (game.State, error) {
	s := st.(State)
	found := false
	for _, id := range seated {
		if id == playerID {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", game.ErrNotAParticipant, playerID)
	}

	switch s.GameStatus {
	case game.StatusOver:
		// Already finished; leaving changes nothing.
		return s, nil
	case game.StatusWaiting:
		// Seat vacated, game keeps waiting.
		return s, nil
	default:
		// Leaving mid-game is a forfeit, not a pause.
		s.GameStatus = game.StatusOver
		s.WinnerIDs = nil
		for _, id := range seated {
			if id != playerID {
				s.WinnerIDs = append(s.WinnerIDs, id)
			}
		}
		return s, nil
	}
}

func (Engine) ApplyMove(st game.State, seated []string, mv game.Move) (game.State, error) {
	s := st.(State)

	if len(seated) > 0 && seated[len(s.Moves)%len(seated)] != mv.PlayerID {
		return nil, game.ErrWrongTurn
	}
	if s.GameStatus != game.StatusInProgress {
		return nil, game.ErrNotInProgress
	}

	var payload MovePayload
	if err := json.Unmarshal(mv.Payload, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", game.ErrIllegalMove, err)
	}
	if payload.NumObjects < minTake || payload.NumObjects > maxTake {
		return nil, fmt.Errorf("%w: must remove between %d and %d objects", game.ErrIllegalMove, minTake, maxTake)
	}
	if payload.NumObjects > remaining(s.Moves) {
		return nil, fmt.Errorf("%w: cannot remove more objects than are left", game.ErrIllegalMove)
	}

	moves := make([]MovePayload, len(s.Moves), len(s.Moves)+1)
	copy(moves, s.Moves)
	moves = append(moves, payload)

	s.Moves = moves
	s.RemainingObjects = remaining(moves)

	if s.RemainingObjects == 0 {
		// The player who took the last object loses: the winner is
		// whoever would have moved next.
		s.GameStatus = game.StatusOver
		s.WinnerIDs = []string{seated[len(moves)%len(seated)]}
	}
	return s, nil
}

func remaining(moves []MovePayload) int {
	left := StartingObjects
	for _, m := range moves {
		left -= m.NumObjects
	}
	return left
}

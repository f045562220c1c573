package game

import "errors"

// Rule rejections. These are the caller's fault, never fatal, and travel
// unchanged from the engine through the session layer to the client.
var (
	ErrWrongTurn       = errors.New("wrong player's turn")
	ErrNotInProgress   = errors.New("game is not in progress")
	ErrIllegalMove     = errors.New("illegal move")
	ErrAlreadyStarted  = errors.New("game already started")
	ErrDuplicatePlayer = errors.New("player already in game")
	ErrGameFull        = errors.New("game is full")
	ErrNotAParticipant = errors.New("player is not in the game")
)

// Lookup failures surfaced by the session manager.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrUnknownGameType = errors.New("unknown game type")
)

// IsRejection reports whether err is a rule rejection rather than an
// infrastructure failure.
func IsRejection(err error) bool {
	for _, sentinel := range []error{
		ErrWrongTurn, ErrNotInProgress, ErrIllegalMove, ErrAlreadyStarted,
		ErrDuplicatePlayer, ErrGameFull, ErrNotAParticipant,
		ErrGameNotFound, ErrUnknownGameType,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

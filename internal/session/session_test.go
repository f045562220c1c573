package session

import (
	"encoding/json"
	"errors"
	"testing"

	"gamehub/internal/game"
	"gamehub/internal/game/nim"
)

func nimMove(n int) game.Move {
	payload, _ := json.Marshal(nim.MovePayload{NumObjects: n})
	return game.Move{Payload: payload}
}

func playerMove(playerID string, n int) game.Move {
	mv := nimMove(n)
	mv.PlayerID = playerID
	return mv
}

func TestSessionJoin(t *testing.T) {
	s := New("g1", nim.Engine{})

	snap, err := s.Join("alice")
	if err != nil {
		t.Fatalf("join alice: %v", err)
	}
	if snap.State.Status() != game.StatusWaiting {
		t.Fatalf("expected waiting, got %s", snap.State.Status())
	}

	snap, err = s.Join("bob")
	if err != nil {
		t.Fatalf("join bob: %v", err)
	}
	if snap.State.Status() != game.StatusInProgress {
		t.Fatalf("expected in progress, got %s", snap.State.Status())
	}
	if len(snap.Players) != 2 || snap.Players[0] != "alice" || snap.Players[1] != "bob" {
		t.Fatalf("expected players in join order, got %v", snap.Players)
	}
}

func TestSessionJoinRejectionLeavesPlayersUnchanged(t *testing.T) {
	s := New("g1", nim.Engine{})
	s.Join("alice")

	if _, err := s.Join("alice"); !errors.Is(err, game.ErrDuplicatePlayer) {
		t.Fatalf("expected ErrDuplicatePlayer, got %v", err)
	}
	if players := s.Snapshot().Players; len(players) != 1 {
		t.Fatalf("expected 1 player after rejected join, got %v", players)
	}
}

func TestSessionJoinThenLeaveRestoresInitialState(t *testing.T) {
	s := New("g1", nim.Engine{})
	before := s.Snapshot()

	s.Join("alice")
	after, err := s.Leave("alice")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}

	if after.State.Status() != before.State.Status() {
		t.Fatalf("status changed: %s -> %s", before.State.Status(), after.State.Status())
	}
	if len(after.Players) != 0 {
		t.Fatalf("expected empty seats, got %v", after.Players)
	}
}

func TestSessionApplyMove(t *testing.T) {
	s := New("g1", nim.Engine{})
	s.Join("alice")
	s.Join("bob")

	snap, err := s.ApplyMove(playerMove("alice", 2))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := snap.State.(nim.State).RemainingObjects; got != nim.StartingObjects-2 {
		t.Fatalf("expected %d remaining, got %d", nim.StartingObjects-2, got)
	}

	// Rejections leave the current state observable and untouched.
	if _, err := s.ApplyMove(playerMove("alice", 2)); !errors.Is(err, game.ErrWrongTurn) {
		t.Fatalf("expected ErrWrongTurn, got %v", err)
	}
	if got := s.Snapshot().State.(nim.State).RemainingObjects; got != nim.StartingObjects-2 {
		t.Fatalf("state changed by rejected move: %d remaining", got)
	}
}

func TestSessionLeaveForfeits(t *testing.T) {
	s := New("g1", nim.Engine{})
	s.Join("alice")
	s.Join("bob")
	s.ApplyMove(playerMove("alice", 1))

	snap, err := s.Leave("bob")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if snap.State.Status() != game.StatusOver {
		t.Fatalf("expected OVER, got %s", snap.State.Status())
	}
	if w := snap.State.Winners(); len(w) != 1 || w[0] != "alice" {
		t.Fatalf("expected winner alice, got %v", w)
	}
	if len(snap.Players) != 1 || snap.Players[0] != "alice" {
		t.Fatalf("expected bob's seat vacated, got %v", snap.Players)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New("g1", nim.Engine{})
	s.Join("alice")

	snap := s.Snapshot()
	snap.Players[0] = "mallory"

	if got := s.Snapshot().Players[0]; got != "alice" {
		t.Fatalf("snapshot aliased internal players slice: %s", got)
	}
}

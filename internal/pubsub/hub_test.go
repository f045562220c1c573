package pubsub

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamehub/internal/game"
)

type fakeState struct {
	status game.Status
}

func (s fakeState) Status() game.Status { return s.status }
func (fakeState) Winners() []string     { return nil }

func snapshot(gameID string) game.Snapshot {
	return game.Snapshot{
		GameID:   gameID,
		GameType: "Nim",
		Players:  []string{"alice", "bob"},
		State:    fakeState{status: game.StatusInProgress},
	}
}

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHubPublishUpdateFansOut(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	aliceCh, cancelAlice, _ := h.Subscribe(ctx, "g1", "alice")
	bobCh, cancelBob, _ := h.Subscribe(ctx, "g1", "bob")
	defer cancelAlice()
	defer cancelBob()

	if err := h.PublishUpdate(ctx, snapshot("g1")); err != nil {
		t.Fatalf("publish: %v", err)
	}

	for _, ch := range []<-chan Event{aliceCh, bobCh} {
		ev := recv(t, ch)
		if ev.Type != TypeUpdate {
			t.Fatalf("expected update, got %s", ev.Type)
		}
		if ev.GameID != "g1" {
			t.Fatalf("expected g1, got %s", ev.GameID)
		}
		if len(ev.Snapshot) == 0 {
			t.Fatal("expected snapshot payload")
		}
	}
}

func TestHubUpdateScopedToGame(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	otherCh, cancel, _ := h.Subscribe(ctx, "g2", "alice")
	defer cancel()

	h.PublishUpdate(ctx, snapshot("g1"))

	select {
	case ev := <-otherCh:
		t.Fatalf("subscriber of g2 received event for %s", ev.GameID)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubPublishErrorScopedToPlayer(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	aliceCh, cancelAlice, _ := h.Subscribe(ctx, "g1", "alice")
	bobCh, cancelBob, _ := h.Subscribe(ctx, "g1", "bob")
	defer cancelAlice()
	defer cancelBob()

	h.PublishError(ctx, "g1", "bob", errors.New("wrong player's turn"))

	ev := recv(t, bobCh)
	if ev.Type != TypeError {
		t.Fatalf("expected error event, got %s", ev.Type)
	}
	if ev.Error != "wrong player's turn" {
		t.Fatalf("unexpected reason: %s", ev.Error)
	}

	select {
	case ev := <-aliceCh:
		t.Fatalf("alice received event meant for bob: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	ch, cancel, _ := h.Subscribe(ctx, "g1", "alice")
	cancel()

	if _, open := <-ch; open {
		t.Fatal("expected channel closed after cancel")
	}

	// Publishing afterwards must not panic or deliver.
	if err := h.PublishUpdate(ctx, snapshot("g1")); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}

	// Double cancel is safe.
	cancel()
}

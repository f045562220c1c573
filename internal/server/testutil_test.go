package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"

	"gamehub/internal/game"
	"gamehub/internal/game/nim"
	"gamehub/internal/pubsub"
	"gamehub/internal/session"
	"gamehub/internal/storage"
)

// --- Test environment ---

type testEnv struct {
	ts  *httptest.Server
	mgr *session.Manager
	hub *pubsub.Hub
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close(context.Background()) })

	reg := game.NewRegistry()
	reg.Register(nim.Engine{})

	hub := pubsub.NewHub()
	mgr := session.NewManager(reg, store, hub)
	t.Cleanup(mgr.Close)

	srv := New(reg, mgr, hub)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	return &testEnv{ts: ts, mgr: mgr, hub: hub}
}

func timeoutCtx(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// --- REST helpers ---

func postJSON(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func createGameViaAPI(t *testing.T, ts *httptest.Server, gameType string) string {
	t.Helper()
	resp := postJSON(t, ts, "/api/games", fmt.Sprintf(`{"gameType":%q}`, gameType))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	result := decodeBody[createGameResponse](t, resp)
	if result.GameID == "" {
		t.Fatal("expected non-empty game ID")
	}
	return result.GameID
}

func joinViaAPI(t *testing.T, ts *httptest.Server, gameID, playerID string) *http.Response {
	t.Helper()
	return postJSON(t, ts, "/api/games/"+gameID+"/join", fmt.Sprintf(`{"playerId":%q}`, playerID))
}

// snapshotDoc decodes the parts of a snapshot the tests care about.
type snapshotDoc struct {
	GameID  string   `json:"gameId"`
	Players []string `json:"players"`
	State   struct {
		Status           game.Status `json:"status"`
		RemainingObjects int         `json:"remainingObjects"`
		Winners          []string    `json:"winners"`
	} `json:"state"`
}

// --- WebSocket helpers ---

func wsURL(ts *httptest.Server, gameID string) string {
	return strings.Replace(ts.URL, "http://", "ws://", 1) + "/api/games/" + gameID + "/ws"
}

// wsConnect dials the game's websocket, sends a join, and consumes the
// initial sync update so the subscription is known to be live.
func wsConnect(ctx context.Context, t *testing.T, ts *httptest.Server, gameID, playerID string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.Dial(ctx, wsURL(ts, gameID), nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })

	wsSend(ctx, t, conn, "join", joinPayload{PlayerID: playerID})

	ev := wsRead(ctx, t, conn)
	if ev.Type != pubsub.TypeUpdate {
		t.Fatalf("expected initial update, got %s (%s)", ev.Type, ev.Error)
	}
	return conn
}

func wsSend(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	p, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	data, err := json.Marshal(WSMessage{Type: msgType, Payload: p})
	if err != nil {
		t.Fatalf("marshal ws message: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("ws write: %v", err)
	}
}

func wsRead(ctx context.Context, t *testing.T, conn *websocket.Conn) pubsub.Event {
	t.Helper()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	var ev pubsub.Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	return ev
}

func wsReadUpdate(ctx context.Context, t *testing.T, conn *websocket.Conn) snapshotDoc {
	t.Helper()
	ev := wsRead(ctx, t, conn)
	if ev.Type != pubsub.TypeUpdate {
		t.Fatalf("expected update, got %s (%s)", ev.Type, ev.Error)
	}
	var doc snapshotDoc
	if err := json.Unmarshal(ev.Snapshot, &doc); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return doc
}

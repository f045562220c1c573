package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"nhooyr.io/websocket"

	"gamehub/internal/game"
	"gamehub/internal/logger"
	"gamehub/internal/pubsub"
)

// WSMessage is the JSON envelope for inbound websocket messages.
// Outbound messages are pubsub.Event values.
type WSMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type joinPayload struct {
	PlayerID string `json:"playerId"`
}

// handleWebSocket attaches one player to a game's event stream. The
// first message must be a join identifying the player; after that the
// client may send move messages. Moves have no synchronous reply: the
// result arrives as an update event (to everyone watching) or an error
// event (to this connection only).
//
// Connecting here does not seat the player; seats are taken through the
// REST join endpoint.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	if _, ok := s.manager.Get(gameID); !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // allow any origin for dev
	})
	if err != nil {
		logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()

	// First message must be a join
	_, data, err := conn.Read(ctx)
	if err != nil {
		return
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "join" {
		sendWSError(ctx, conn, gameID, "", "first message must be a join")
		return
	}
	var join joinPayload
	if err := json.Unmarshal(msg.Payload, &join); err != nil || join.PlayerID == "" {
		sendWSError(ctx, conn, gameID, "", "invalid join payload")
		return
	}
	playerID := join.PlayerID

	events, cancel, err := s.broker.Subscribe(ctx, gameID, playerID)
	if err != nil {
		sendWSError(ctx, conn, gameID, playerID, "subscribe failed")
		return
	}
	defer cancel()

	wsConnections.Inc()
	defer wsConnections.Dec()

	// Sync the new subscriber with the current state. Once this write
	// lands the subscription is live: no later transition can be missed.
	if sess, ok := s.manager.Get(gameID); ok {
		snap, err := json.Marshal(sess.Snapshot())
		if err == nil {
			data, _ := json.Marshal(pubsub.Event{Type: pubsub.TypeUpdate, GameID: gameID, Snapshot: snap})
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}

	// Writer goroutine: pump published events to the websocket
	go func() {
		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
				return
			}
		}
	}()

	// Reader loop: handle incoming messages
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			break
		}
		var msg WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			sendWSError(ctx, conn, gameID, playerID, "invalid message")
			continue
		}
		switch msg.Type {
		case "move":
			movesReceived.Inc()
			s.manager.ApplyMove(ctx, gameID, game.Move{
				PlayerID: playerID,
				Payload:  msg.Payload,
			})
		default:
			sendWSError(ctx, conn, gameID, playerID, "unknown message type: "+msg.Type)
		}
	}

	logger.Debug("player disconnected", "playerId", playerID, "gameId", gameID)
}

func sendWSError(ctx context.Context, conn *websocket.Conn, gameID, playerID, message string) {
	data, _ := json.Marshal(pubsub.Event{
		Type:     pubsub.TypeError,
		GameID:   gameID,
		PlayerID: playerID,
		Error:    message,
	})
	conn.Write(ctx, websocket.MessageText, data)
}

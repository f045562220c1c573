package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gamehub/internal/game"
	"gamehub/internal/pubsub"
	"gamehub/internal/session"
	"gamehub/internal/storage"
)

// Server is the HTTP front of the session engine. Create/join/leave/list
// are request/response; moves travel over the websocket endpoint and
// their results come back through the publish boundary.
type Server struct {
	router   *mux.Router
	registry *game.Registry
	manager  *session.Manager
	broker   pubsub.Subscriber
}

// New creates a server with all routes.
func New(registry *game.Registry, manager *session.Manager, broker pubsub.Subscriber) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		registry: registry,
		manager:  manager,
		broker:   broker,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/gametypes", s.handleListGameTypes).Methods("GET")
	api.HandleFunc("/games", s.handleCreateGame).Methods("POST")
	api.HandleFunc("/games", s.handleListGames).Methods("GET")
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods("GET")
	api.HandleFunc("/games/{id}/join", s.handleJoinGame).Methods("POST")
	api.HandleFunc("/games/{id}/leave", s.handleLeaveGame).Methods("POST")
	api.HandleFunc("/games/{id}/ws", s.handleWebSocket).Methods("GET")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListGameTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.registry.List())
}

type createGameRequest struct {
	GameType string `json:"gameType"`
}

type createGameResponse struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid request body"))
		return
	}
	req.GameType = strings.TrimSpace(req.GameType)
	if req.GameType == "" {
		writeJSON(w, http.StatusBadRequest, errResponse("gameType required"))
		return
	}

	sess, err := s.manager.Create(r.Context(), req.GameType)
	if err != nil {
		writeError(w, err)
		return
	}
	sessionsCreated.Inc()
	writeJSON(w, http.StatusCreated, createGameResponse{GameID: sess.ID()})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	f := storage.Filter{
		GameType: r.URL.Query().Get("gameType"),
		Status:   game.Status(r.URL.Query().Get("status")),
	}
	recs, err := s.manager.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	snapshots := make([]json.RawMessage, 0, len(recs))
	for _, rec := range recs {
		snapshots = append(snapshots, rec.Snapshot)
	}
	writeJSON(w, http.StatusOK, snapshots)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, err := s.manager.GetSnapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec.Snapshot)
}

type playerRequest struct {
	PlayerID string `json:"playerId"`
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	s.handlePlayerAction(w, r, s.manager.Join)
}

func (s *Server) handleLeaveGame(w http.ResponseWriter, r *http.Request) {
	s.handlePlayerAction(w, r, s.manager.Leave)
}

func (s *Server) handlePlayerAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(ctx context.Context, id, playerID string) (game.Snapshot, error),
) {
	var req playerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errResponse("invalid request body"))
		return
	}
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" {
		writeJSON(w, http.StatusBadRequest, errResponse("playerId required"))
		return
	}

	snap, err := action(r.Context(), mux.Vars(r)["id"], req.PlayerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errResponse(err.Error()))
	case game.IsRejection(err):
		writeJSON(w, http.StatusBadRequest, errResponse(err.Error()))
	default:
		writeJSON(w, http.StatusInternalServerError, errResponse(err.Error()))
	}
}

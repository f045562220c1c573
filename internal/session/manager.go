package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamehub/internal/game"
	"gamehub/internal/logger"
	"gamehub/internal/pubsub"
	"gamehub/internal/storage"
)

// Manager is the process-wide authority over live sessions: the only
// place sessions are created, looked up, and evicted. Map access is
// mutually exclusive; operations inside a session run under that
// session's own lock, so moves in different games never contend.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	registry *game.Registry
	store    storage.Store
	pub      pubsub.Publisher

	// Snapshots are captured synchronously at transition time and
	// written by a single background goroutine, so a slow store never
	// blocks the next in-memory move while writes for a session still
	// land in transition order.
	persist chan storage.Record
	done    chan struct{}
}

// NewManager creates a session manager and starts its persistence
// writer.
func NewManager(registry *game.Registry, store storage.Store, pub pubsub.Publisher) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		registry: registry,
		store:    store,
		pub:      pub,
		persist:  make(chan storage.Record, 256),
		done:     make(chan struct{}),
	}
	go m.persistLoop()
	return m
}

// Create makes a new session of the given game type, durably persists
// the initial snapshot, and returns the session.
func (m *Manager) Create(ctx context.Context, gameType string) (*Session, error) {
	engine, ok := m.registry.Get(gameType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", game.ErrUnknownGameType, gameType)
	}

	s := New(uuid.NewString(), engine)

	rec, err := record(s.Snapshot())
	if err != nil {
		return nil, err
	}
	if err := m.store.SaveSnapshot(ctx, rec); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns a live session by ID. It never creates.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// GetSnapshot returns the session's current record, falling back to the
// durable store for sessions that are no longer live.
func (m *Manager) GetSnapshot(ctx context.Context, id string) (storage.Record, error) {
	if s, ok := m.Get(id); ok {
		return record(s.Snapshot())
	}
	return m.store.GetSnapshot(ctx, id)
}

// Join seats playerID in the session, persists and publishes the new
// state, and returns the snapshot.
func (m *Manager) Join(ctx context.Context, id, playerID string) (game.Snapshot, error) {
	s, ok := m.Get(id)
	if !ok {
		return game.Snapshot{}, game.ErrGameNotFound
	}
	// Publish and enqueue inside the session's critical section, so
	// subscribers and the persistence queue see transitions on one
	// session in the order they committed.
	s.mu.Lock()
	snap, err := s.joinLocked(playerID)
	if err != nil {
		s.mu.Unlock()
		return game.Snapshot{}, err
	}
	m.publishUpdate(ctx, snap)
	m.enqueuePersist(snap)
	s.mu.Unlock()
	return snap, nil
}

// Leave vacates playerID's seat, persists and publishes the new state,
// and returns the snapshot. A session driven to OVER is evicted; its
// persisted record remains for historical queries.
func (m *Manager) Leave(ctx context.Context, id, playerID string) (game.Snapshot, error) {
	s, ok := m.Get(id)
	if !ok {
		return game.Snapshot{}, game.ErrGameNotFound
	}
	s.mu.Lock()
	snap, err := s.leaveLocked(playerID)
	if err != nil {
		s.mu.Unlock()
		return game.Snapshot{}, err
	}
	m.publishUpdate(ctx, snap)
	m.enqueuePersist(snap)
	s.mu.Unlock()
	if snap.State.Status() == game.StatusOver {
		m.Remove(id)
	}
	return snap, nil
}

// ApplyMove applies mv to the session. There is no synchronous result:
// on success the new snapshot is published to the game's subscribers
// and persisted; on rejection a typed error is published to the acting
// player only and nothing is persisted.
func (m *Manager) ApplyMove(ctx context.Context, id string, mv game.Move) {
	s, ok := m.Get(id)
	if !ok {
		m.publishError(ctx, id, mv.PlayerID, game.ErrGameNotFound)
		return
	}
	s.mu.Lock()
	snap, err := s.applyMoveLocked(mv)
	if err != nil {
		s.mu.Unlock()
		m.publishError(ctx, id, mv.PlayerID, err)
		return
	}
	m.publishUpdate(ctx, snap)
	m.enqueuePersist(snap)
	s.mu.Unlock()
	if snap.State.Status() == game.StatusOver {
		m.Remove(id)
	}
}

// List queries the durable store, so sessions created by any instance
// are discoverable. Records come back newest first.
func (m *Manager) List(ctx context.Context, f storage.Filter) ([]storage.Record, error) {
	return m.store.ListSnapshots(ctx, f)
}

// Remove evicts a session from the live map. The stored snapshot is
// kept.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reset evicts every live session. Tests use it to avoid cross-test
// leakage.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
}

// Close stops the persistence writer after draining pending writes.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	close(m.persist)
	m.mu.Unlock()
	<-m.done
}

func (m *Manager) publishUpdate(ctx context.Context, snap game.Snapshot) {
	if err := m.pub.PublishUpdate(ctx, snap); err != nil {
		logger.Error("publish update", "gameId", snap.GameID, "error", err)
	}
}

func (m *Manager) publishError(ctx context.Context, id, playerID string, reason error) {
	if err := m.pub.PublishError(ctx, id, playerID, reason); err != nil {
		logger.Error("publish error event", "gameId", id, "playerId", playerID, "error", err)
	}
}

func (m *Manager) enqueuePersist(snap game.Snapshot) {
	rec, err := record(snap)
	if err != nil {
		logger.Error("encode snapshot", "gameId", snap.GameID, "error", err)
		return
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.persist <- rec:
	default:
		logger.Error("persistence queue full, snapshot dropped", "gameId", rec.GameID)
	}
}

func (m *Manager) persistLoop() {
	defer close(m.done)
	for rec := range m.persist {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := m.store.SaveSnapshot(ctx, rec)
		cancel()
		if err != nil {
			// Reported but non-fatal: in-memory state stays the source
			// of truth for live play.
			logger.Error("persist snapshot", "gameId", rec.GameID, "error", err)
		}
	}
}

func record(snap game.Snapshot) (storage.Record, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return storage.Record{}, fmt.Errorf("marshal snapshot: %w", err)
	}
	return storage.Record{
		GameID:   snap.GameID,
		GameType: snap.GameType,
		Status:   snap.State.Status(),
		Snapshot: data,
	}, nil
}

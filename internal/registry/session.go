// internal/registry/session.go
package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RenatoDeCol/party-games/internal/auth"
)

// SessionStore tracks live reconnect sessions and the grace timers for
// disconnected players. Tokens are signed by the auth package; the store
// adds revocability on top, so a kicked or expired player cannot replay
// an otherwise-valid token.
type SessionStore struct {
	mu     sync.Mutex
	active map[uuid.UUID]string
	timers map[uuid.UUID]*time.Timer
}

// NewSessionStore returns an in-memory store for reconnect sessions.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		active: make(map[uuid.UUID]string),
		timers: make(map[uuid.UUID]*time.Timer),
	}
}

// Register mints a signed reconnect token for the player and marks the
// session active.
func (s *SessionStore) Register(playerID uuid.UUID, roomID string) (string, error) {
	token, err := auth.CreateToken(playerID, roomID)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[playerID] = roomID
	return token, nil
}

// Resolve verifies a presented token and checks the session is still
// active for the room it was minted in.
func (s *SessionStore) Resolve(token string) (uuid.UUID, string, bool) {
	playerID, roomID, err := auth.VerifyToken(token)
	if err != nil {
		return uuid.Nil, "", false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if current, ok := s.active[playerID]; !ok || current != roomID {
		return uuid.Nil, "", false
	}
	return playerID, roomID, true
}

// ScheduleExpiry arms (or re-arms) the grace timer for a disconnected
// player. fn runs once when the grace period elapses.
func (s *SessionStore) ScheduleExpiry(playerID uuid.UUID, ttl time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[playerID]; ok {
		t.Stop()
	}
	s.timers[playerID] = time.AfterFunc(ttl, fn)
}

// CancelExpiry stops a pending grace timer, if any. Returns whether a
// timer was armed.
func (s *SessionStore) CancelExpiry(playerID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.timers[playerID]
	if ok {
		t.Stop()
		delete(s.timers, playerID)
	}
	return ok
}

// Remove revokes the player's session and any pending grace timer.
func (s *SessionStore) Remove(playerID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, playerID)
	if t, ok := s.timers[playerID]; ok {
		t.Stop()
		delete(s.timers, playerID)
	}
}

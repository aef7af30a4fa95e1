// internal/session/store.go
//
// Session model, store contract, and cookie binding.
//
// Context
// -------
// The request context never owns session lifetime.  It derives an id from
// the "relay_session" cookie and asks a Store for the matching proxy; the
// store decides persistence, expiry, and eviction.  Two stores ship with the
// core: an in-memory LRU store for embedding and tests, and a sqlx-backed
// MySQL store for multi-process deployments.
//
// Stores must be safe for concurrent use; they are the only shared mutable
// state between request flows.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const cookieName = "relay_session"

// ErrNotFound is returned by Find when no session matches the id.
var ErrNotFound = errors.New("session: not found")

// Session is the proxy handed to request contexts.  Values are guarded
// because a WebSocket module may touch the session from its read loop while
// the owning flow is still live.
type Session struct {
	ID string

	mu     sync.RWMutex
	values map[string]any
}

// New mints an unsaved session with a fresh id.
func New() *Session {
	return &Session{ID: uuid.NewString(), values: make(map[string]any)}
}

// Value reads a single session value.
func (s *Session) Value(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// SetValue writes a single session value.  Call Store.Save to persist.
func (s *Session) SetValue(key string, v any) {
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
}

// snapshot copies the value map for serialization.
func (s *Session) snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// Store is the external collaborator contract.
type Store interface {
	Find(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// RequestID extracts the session id from the request cookie.  ok == false
// when the cookie is missing or empty.
func RequestID(r *http.Request) (id string, ok bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// Issue sets the session cookie on the response.
//
// Callers typically invoke this after the first Save of a fresh session.
func Issue(w http.ResponseWriter, r *http.Request, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r != nil && r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(ttl),
	})
}

// Clear drops the session cookie.
func Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Package session holds the client's in-memory authentication state: the
// current access token and user identity. The refresh token never appears
// here; it lives in the HTTP client's cookie jar.
package session

import "sync"

// User is the client-side view of the authenticated account.
type User struct {
	ID           string
	UserName     string
	TokenVersion int
}

// Session is a snapshot of the authentication state. A zero Session means
// logged out.
type Session struct {
	AccessToken string
	User        User
}

// Active reports whether the session carries an access token.
func (s Session) Active() bool {
	return s.AccessToken != ""
}

// Store is a concurrency-safe holder of the current Session. The reauth
// transport and the CLI both read and write it, possibly from different
// goroutines.
type Store struct {
	mu          sync.RWMutex
	current     Session
	subscribers []func(Session)
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the current session.
func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set replaces the session and notifies subscribers.
func (s *Store) Set(session Session) {
	s.mu.Lock()
	s.current = session
	subs := make([]func(Session), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// Clear drops the session. Used on logout and whenever a refresh fails.
func (s *Store) Clear() {
	s.Set(Session{})
}

// Subscribe registers fn to be called after every Set/Clear. Callbacks run
// on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

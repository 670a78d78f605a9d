// Package session holds the per-user language and city choices that the
// front-end passes to the selector, plus the prompt throttle.
package session

import (
	"strings"
	"sync"
)

// Defaults for a freshly started session
const (
	DefaultLanguage = "RU"
	DefaultCity     = "all"
)

// Session is one user's current filter
type Session struct {
	UserID   string
	Language string
	City     string
}

// Filter returns the lower-cased language and city to pass to the selector
func (s Session) Filter() (language, city string) {
	return strings.ToLower(s.Language), strings.ToLower(s.City)
}

// Registry keeps sessions in memory, keyed by user
type Registry struct {
	mu       sync.Mutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Start resets the user's session to the defaults
func (r *Registry) Start(userID string) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Session{UserID: userID, Language: DefaultLanguage, City: DefaultCity}
	r.sessions[userID] = s
	return s
}

// Get returns the user's session, if started
func (r *Registry) Get(userID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	return s, ok
}

// SetLanguage updates the language, starting a session when needed
func (r *Registry) SetLanguage(userID, language string) Session {
	return r.update(userID, func(s *Session) { s.Language = language })
}

// SetCity updates the city key, starting a session when needed
func (r *Registry) SetCity(userID, city string) Session {
	return r.update(userID, func(s *Session) { s.City = city })
}

func (r *Registry) update(userID string, fn func(*Session)) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[userID]
	if !ok {
		s = Session{UserID: userID, Language: DefaultLanguage, City: DefaultCity}
	}
	fn(&s)
	r.sessions[userID] = s
	return s
}

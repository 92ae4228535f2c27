package server

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ukaji3/datavision-go/pkg/datavision/session"
)

// Registry is a bounded in-memory set of sessions. The least recently used
// session is evicted and reset when capacity is exceeded.
type Registry struct {
	cache *lru.Cache[string, *session.Session]
}

// NewRegistry creates a Registry holding at most capacity sessions.
func NewRegistry(capacity int) (*Registry, error) {
	cache, err := lru.NewWithEvict[string, *session.Session](capacity, func(_ string, s *session.Session) {
		s.Reset()
	})
	if err != nil {
		return nil, err
	}
	return &Registry{cache: cache}, nil
}

// Add registers s under its ID.
func (r *Registry) Add(s *session.Session) {
	r.cache.Add(s.ID, s)
}

// Get returns the session with id and marks it recently used.
func (r *Registry) Get(id string) (*session.Session, bool) {
	return r.cache.Get(id)
}

// Remove forgets the session and reports whether it was present.
func (r *Registry) Remove(id string) bool {
	return r.cache.Remove(id)
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return r.cache.Len()
}

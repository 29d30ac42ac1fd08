package store

import (
	"errors"
	"sync"
	"time"

	"github.com/i474232898/forecast-widget/internal/widget"
)

var (
	// ErrNotFound is returned when no widget is registered for a session.
	ErrNotFound = errors.New("no widget for session")
)

type session struct {
	widget   *widget.Controller
	lastSeen time.Time
}

// MemoryStore is a concurrency-safe registry of widgets keyed by session id.
type MemoryStore struct {
	mu sync.RWMutex

	// key: session id
	data map[string]*session

	// sessions idle for longer than maxAge are swept; 0 keeps them forever
	maxAge time.Duration
	now    func() time.Time
}

// NewMemoryStore creates a new MemoryStore. If maxAge is <= 0, sessions never expire.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]*session),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Save registers w under id, replacing and closing any previous widget.
func (s *MemoryStore) Save(id string, w *widget.Controller) {
	s.mu.Lock()
	prev, ok := s.data[id]
	s.data[id] = &session{widget: w, lastSeen: s.now()}
	s.mu.Unlock()

	if ok && prev.widget != w {
		prev.widget.Close()
	}
}

// Get returns the widget for id and marks the session as seen.
func (s *MemoryStore) Get(id string) (*widget.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.data[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.lastSeen = s.now()
	return sess.widget, nil
}

// GetOrCreate returns the widget for id, creating it with create when the
// session is unknown. create runs without the store lock held; when two
// callers race on the same id the first one stored wins and the other's
// widget is closed.
func (s *MemoryStore) GetOrCreate(id string, create func() (*widget.Controller, error)) (*widget.Controller, bool, error) {
	if w, err := s.Get(id); err == nil {
		return w, false, nil
	}

	w, err := create()
	if err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	if sess, ok := s.data[id]; ok {
		sess.lastSeen = s.now()
		s.mu.Unlock()
		w.Close()
		return sess.widget, false, nil
	}
	s.data[id] = &session{widget: w, lastSeen: s.now()}
	s.mu.Unlock()

	return w, true, nil
}

// Delete removes and closes the widget for id.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	sess, ok := s.data[id]
	delete(s.data, id)
	s.mu.Unlock()

	if ok {
		sess.widget.Close()
	}
}

// Sweep removes sessions idle for longer than maxAge, closes their widgets
// and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	if s.maxAge <= 0 {
		return 0
	}

	cutoff := s.now().Add(-s.maxAge)
	var expired []*widget.Controller

	s.mu.Lock()
	for id, sess := range s.data {
		if sess.lastSeen.Before(cutoff) {
			expired = append(expired, sess.widget)
			delete(s.data, id)
		}
	}
	s.mu.Unlock()

	for _, w := range expired {
		w.Close()
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.data)
}

// CloseAll closes every widget and empties the store.
func (s *MemoryStore) CloseAll() {
	s.mu.Lock()
	all := s.data
	s.data = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.widget.Close()
	}
}

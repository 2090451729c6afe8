// Package session holds the story-session state machine: the volatile
// keyed store, the Session record, and the Engine that drives every
// transition through the model client.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/llm"
	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

var (
	// ErrNotFound is returned for an unknown session identifier.
	ErrNotFound = errors.New("story not found")
	// ErrInvalidChoice is returned when a choice id is outside the
	// currently offered option set, or no options exist.
	ErrInvalidChoice = errors.New("invalid choice")
	// ErrInvalidConfig is returned for a structurally invalid story
	// configuration.
	ErrInvalidConfig = errors.New("invalid story configuration")
	// ErrEdited is returned when an advance is attempted on a session
	// whose paragraphs were replaced by an edit. Edited stories are
	// terminal: the paragraph counter no longer matches the text.
	ErrEdited = errors.New("story was edited and accepts no further turns")
)

// Session is one in-progress or completed interactive story. All fields
// are guarded by mu; the Engine holds mu across a full transition so two
// concurrent advances on the same story serialize instead of racing.
type Session struct {
	mu sync.Mutex

	ID            string
	Config        story.Config
	MaxParagraphs int
	Paragraphs    []string
	Current       int // 1-based, always equals len(Paragraphs)
	Choices       []story.Choice
	Messages      []llm.Message
	Title         string
	Edited        bool
	CreatedAt     time.Time
}

// Complete reports whether the story reached its paragraph target.
func (s *Session) Complete() bool {
	return s.Current >= s.MaxParagraphs
}

// Store is a volatile keyed session store. State does not survive the
// process; finished stories are archived separately.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put registers a session under its id.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns the session for an id, or ErrNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

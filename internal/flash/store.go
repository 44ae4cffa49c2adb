// Package flash holds one-shot messages that survive a redirect.
//
// Each session has a single slot. Put overwrites it, Take empties it, and an
// entry older than TTL reads as absent.
package flash

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// TTL is how long an untaken message stays readable.
const TTL = 30 * time.Second

// Severity selects how a message is rendered.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
)

// Message is shown once on the next settings view.
type Message struct {
	Text     string
	Severity Severity
}

type entry struct {
	msg     Message
	expires time.Time
}

// Store holds at most one message per session. It is safe for concurrent use.
type Store struct {
	clock clockwork.Clock

	mu    sync.Mutex
	slots map[string]entry
}

// NewStore returns an empty store. A nil clock means the wall clock.
func NewStore(clock clockwork.Clock) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{clock: clock, slots: make(map[string]entry)}
}

// Put stores msg for session, replacing any earlier message.
func (s *Store) Put(session string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[session] = entry{msg: msg, expires: s.clock.Now().Add(TTL)}
}

// Take returns and removes the message for session.
func (s *Store) Take(session string) (Message, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.slots[session]
	if !ok {
		return Message{}, false
	}
	delete(s.slots, session)
	if !s.clock.Now().Before(e.expires) {
		return Message{}, false
	}
	return e.msg, true
}

// Sweep drops expired slots and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	n := 0
	for k, e := range s.slots {
		if !now.Before(e.expires) {
			delete(s.slots, k)
			n++
		}
	}
	return n
}

// Len returns the number of occupied slots, expired or not.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

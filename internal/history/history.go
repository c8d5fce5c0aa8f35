// Package history keeps the in-session navigation history: a stack of
// visited locations with a cursor, like a browser's back/forward list.
package history

import (
	"net/url"
	"strconv"
	"sync"

	"github.com/kobzarvs/qguru/internal/position"
)

// Entry is one visited location.
type Entry struct {
	File      string
	Line      int
	Selection *position.Range
}

// URL returns the address of the entry: "source?file=<path>[#L<line>]".
func (e Entry) URL() string {
	u := "source?" + url.Values{"file": {e.File}}.Encode()
	if e.Line > 0 {
		return u + "#L" + strconv.Itoa(e.Line)
	}
	return u
}

// Stack is safe for concurrent use.
type Stack struct {
	mu      sync.RWMutex
	entries []Entry
	cur     int
}

func New() *Stack {
	return &Stack{cur: -1}
}

// Replace overwrites the current entry, or records the first one. The stack
// does not grow unless it was empty.
func (s *Stack) Replace(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur < 0 {
		s.entries = append(s.entries[:0], e)
		s.cur = 0
		return
	}
	s.entries[s.cur] = e
}

// Push records e after the current entry, discarding any forward entries.
func (s *Stack) Push(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries[:s.cur+1], e)
	s.cur = len(s.entries) - 1
}

// Back moves the cursor one entry back and returns the entry now current.
func (s *Stack) Back() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur <= 0 {
		return Entry{}, false
	}
	s.cur--
	return s.entries[s.cur], true
}

// Forward moves the cursor one entry forward and returns the entry now current.
func (s *Stack) Forward() (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur < 0 || s.cur >= len(s.entries)-1 {
		return Entry{}, false
	}
	s.cur++
	return s.entries[s.cur], true
}

// Current returns the entry under the cursor.
func (s *Stack) Current() (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur < 0 {
		return Entry{}, false
	}
	return s.entries[s.cur], true
}

// Len returns the number of entries, including forward ones.
func (s *Stack) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

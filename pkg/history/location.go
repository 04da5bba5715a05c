// Package history provides the address side of the router: an in-process
// location handle with single-owner semantics, and a persistent journal of
// committed navigations.
package history

import (
	"errors"
	"sync"
)

// ErrClaimed is returned when a second owner tries to claim a location.
var ErrClaimed = errors.New("history: location already claimed")

// MemoryLocation is an in-process implementation of the router's Location
// contract. It keeps a linear entry stack so Back can revisit earlier URLs,
// enforces single ownership via Claim, and delivers externally made edits to
// subscribers.
//
// Writes made through Push and Replace are owner writes and do not notify
// subscribers; SimulateEdit and Back model the user editing the address bar
// or using history buttons, and do.
type MemoryLocation struct {
	mu      sync.Mutex
	entries []string
	pos     int
	claimed bool
	subs    map[int]func(string)
	nextSub int
}

// NewMemoryLocation creates a location showing initial.
func NewMemoryLocation(initial string) *MemoryLocation {
	if initial == "" {
		initial = "/"
	}
	return &MemoryLocation{
		entries: []string{initial},
		subs:    make(map[int]func(string)),
	}
}

// Current returns the currently visible URL.
func (l *MemoryLocation) Current() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries[l.pos]
}

// Push makes url visible as a new entry, dropping any forward entries.
func (l *MemoryLocation) Push(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries[:l.pos+1], url)
	l.pos = len(l.entries) - 1
}

// Replace makes url visible in place of the current entry.
func (l *MemoryLocation) Replace(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.pos] = url
}

// Subscribe registers fn for externally made edits. The returned function
// cancels the subscription.
func (l *MemoryLocation) Subscribe(fn func(url string)) (cancel func()) {
	l.mu.Lock()
	id := l.nextSub
	l.nextSub++
	l.subs[id] = fn
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		delete(l.subs, id)
		l.mu.Unlock()
	}
}

// Claim marks the location as owned. A second claim fails with ErrClaimed
// until the returned release function runs.
func (l *MemoryLocation) Claim() (release func(), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.claimed {
		return nil, ErrClaimed
	}
	l.claimed = true
	return func() {
		l.mu.Lock()
		l.claimed = false
		l.mu.Unlock()
	}, nil
}

// SimulateEdit models the user typing a new URL: the entry is pushed and
// subscribers are notified.
func (l *MemoryLocation) SimulateEdit(url string) {
	l.mu.Lock()
	l.entries = append(l.entries[:l.pos+1], url)
	l.pos = len(l.entries) - 1
	subs := l.subscribers()
	l.mu.Unlock()
	for _, fn := range subs {
		fn(url)
	}
}

// Back moves one entry backwards and notifies subscribers, like a history
// button. It reports whether there was an earlier entry.
func (l *MemoryLocation) Back() bool {
	l.mu.Lock()
	if l.pos == 0 {
		l.mu.Unlock()
		return false
	}
	l.pos--
	url := l.entries[l.pos]
	subs := l.subscribers()
	l.mu.Unlock()
	for _, fn := range subs {
		fn(url)
	}
	return true
}

// Forward is the inverse of Back.
func (l *MemoryLocation) Forward() bool {
	l.mu.Lock()
	if l.pos >= len(l.entries)-1 {
		l.mu.Unlock()
		return false
	}
	l.pos++
	url := l.entries[l.pos]
	subs := l.subscribers()
	l.mu.Unlock()
	for _, fn := range subs {
		fn(url)
	}
	return true
}

// Entries returns a copy of the entry stack, oldest first.
func (l *MemoryLocation) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// subscribers copies the subscriber set; callers must hold l.mu.
func (l *MemoryLocation) subscribers() []func(string) {
	subs := make([]func(string), 0, len(l.subs))
	for _, fn := range l.subs {
		subs = append(subs, fn)
	}
	return subs
}

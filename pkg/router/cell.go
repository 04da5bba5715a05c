package router

import "sync"

// Cell is an observable value container: a current value plus subscribers.
// The live route tree exposes change-over-time values through cells; reusing
// an activation across navigations means pushing new values into its cells
// rather than recreating the node.
type Cell[T any] struct {
	mu      sync.RWMutex
	value   T
	subs    map[int]func(T)
	nextSub int
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{value: initial, subs: make(map[int]func(T))}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores a new value and notifies all subscribers with it.
// Subscribers are copied out before notification so a callback may
// subscribe or unsubscribe without deadlocking.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	c.value = value
	subs := make([]func(T), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn(value)
	}
}

// Subscribe registers fn to be called on every Set. It returns a cancel
// function that removes the subscription.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// close drops all subscribers. Called when the owning live node is
// destroyed.
func (c *Cell[T]) close() {
	c.mu.Lock()
	c.subs = make(map[int]func(T))
	c.mu.Unlock()
}

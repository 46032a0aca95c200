package service

import "sync"

// TicketLocker serializes mutating operations per ticket id so that
// roster and status guards always run against freshly loaded state.
// Cross-process safety additionally rests on the database unique
// constraints and conditional updates.
type TicketLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewTicketLocker creates an empty locker.
func NewTicketLocker() *TicketLocker {
	return &TicketLocker{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the per-ticket mutex and returns its release function.
func (l *TicketLocker) Lock(ticketID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[ticketID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[ticketID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

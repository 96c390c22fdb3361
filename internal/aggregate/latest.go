package aggregate

import "sync"

// Latest holds the value of the most recently issued request. A response
// to a request that has since been superseded is dropped, so a slow answer
// to an old selection never replaces the answer to a newer one.
type Latest[T any] struct {
	mu     sync.Mutex
	issued uint64
	shown  uint64
	value  T
}

// Issue registers a new request and returns its ticket.
func (l *Latest[T]) Issue() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.issued++
	return l.issued
}

// Offer publishes v for the request with the given ticket. It reports
// whether v was accepted, which happens only when no newer request has
// been issued.
func (l *Latest[T]) Offer(ticket uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.issued || ticket <= l.shown {
		return false
	}
	l.shown = ticket
	l.value = v
	return true
}

// Value returns the published value and the ticket it belongs to. The
// ticket is 0 when nothing has been published yet.
func (l *Latest[T]) Value() (T, uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.shown
}

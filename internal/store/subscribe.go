package store

import (
	"sync"

	"github.com/nibzard/clarity-go/internal/todo"
)

// Op names the operation behind a Change.
type Op string

const (
	OpAdd            Op = "add"
	OpToggle         Op = "toggle"
	OpDelete         Op = "delete"
	OpUpdate         Op = "update"
	OpSetFilter      Op = "set_filter"
	OpClearCompleted Op = "clear_completed"
	OpReplace        Op = "replace"
)

// Change is published after every mutation. State is a private copy.
type Change struct {
	Op     Op
	TaskID string
	// Rev increases by one per committed mutation.
	Rev   uint64
	State todo.State
}

// Subscription receives changes until Unsubscribe or Store.Close.
type Subscription struct {
	ch     chan Change
	owner  *subscribers
	closed bool
}

// Changes returns the receive channel. It is closed on Unsubscribe.
func (sub *Subscription) Changes() <-chan Change {
	return sub.ch
}

// Unsubscribe stops delivery and closes the channel. Safe to call twice.
func (sub *Subscription) Unsubscribe() {
	sub.owner.remove(sub)
}

type subscribers struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func (s *subscribers) init() {
	s.subs = make(map[*Subscription]struct{})
}

// Subscribe registers for change notifications. After Close the returned
// subscription's channel is already closed.
func (s *Store) Subscribe() *Subscription {
	return s.subs.add(s.bufferSize)
}

func (s *subscribers) add(size int) *Subscription {
	sub := &Subscription{ch: make(chan Change, size), owner: s}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		sub.closed = true
		close(sub.ch)
		return sub
	}
	s.subs[sub] = struct{}{}
	return sub
}

func (s *subscribers) remove(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	delete(s.subs, sub)
	close(sub.ch)
}

// publish never blocks. A full buffer drops its oldest change so the
// newest state is always delivered.
func (s *subscribers) publish(c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for sub := range s.subs {
		select {
		case sub.ch <- c:
			continue
		default:
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- c:
		default:
		}
	}
}

func (s *subscribers) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		sub.closed = true
		close(sub.ch)
	}
	clear(s.subs)
}

// Subscribers returns the number of live subscriptions.
func (s *Store) Subscribers() int {
	s.subs.mu.Lock()
	defer s.subs.mu.Unlock()
	return len(s.subs.subs)
}

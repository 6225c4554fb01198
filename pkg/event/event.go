// Package event provides typed event sources with explicit subscription tokens.
//
// A Signal fans an event out to its subscribers in subscription order.
// Subscribe returns a *Subscription; cancelling it removes the handler and
// guarantees the handler is not invoked by any later Emit.
package event

import (
	"sync"
	"sync/atomic"
)

// Signal is an event source for payloads of type T. The zero value is ready to use.
type Signal[T any] struct {
	mu   sync.Mutex
	subs []*Subscription
	fns  map[*Subscription]func(T)

	subscribed atomic.Int64 // total Subscribe calls, for tests and diagnostics
}

// Subscription is the token returned by Signal.Subscribe.
type Subscription struct {
	active atomic.Bool
	cancel func()
}

// Subscribe registers fn and returns its token.
func (s *Signal[T]) Subscribe(fn func(T)) *Subscription {
	sub := &Subscription{}
	sub.active.Store(true)
	sub.cancel = func() { s.remove(sub) }

	s.mu.Lock()
	if s.fns == nil {
		s.fns = make(map[*Subscription]func(T))
	}
	s.subs = append(s.subs, sub)
	s.fns[sub] = fn
	s.mu.Unlock()

	s.subscribed.Add(1)
	return sub
}

// Emit calls every active handler with v. Handlers run on the calling
// goroutine, outside the signal's lock, so they may subscribe or cancel.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	subs := make([]*Subscription, len(s.subs))
	copy(subs, s.subs)
	fns := make([]func(T), len(subs))
	for i, sub := range subs {
		fns[i] = s.fns[sub]
	}
	s.mu.Unlock()

	for i, sub := range subs {
		if sub.Active() {
			fns[i](v)
		}
	}
}

// Len returns the number of live subscriptions.
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Subscribed returns how many times Subscribe was called.
func (s *Signal[T]) Subscribed() int {
	return int(s.subscribed.Load())
}

func (s *Signal[T]) remove(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, v := range s.subs {
		if v == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
	delete(s.fns, sub)
}

// Active reports whether the subscription has not been cancelled.
func (sub *Subscription) Active() bool {
	return sub != nil && sub.active.Load()
}

// Cancel unsubscribes. It is idempotent and safe on a nil subscription.
func (sub *Subscription) Cancel() {
	if sub == nil {
		return
	}
	if sub.active.CompareAndSwap(true, false) {
		sub.cancel()
	}
}

// Slot owns at most one subscription. Setting a new one cancels the old one.
type Slot struct {
	mu  sync.Mutex
	sub *Subscription
}

// Replace cancels the stored subscription, then stores the one returned
// by subscribe. Both happen under the slot's lock, so concurrent Replace
// calls never leave two subscriptions live.
func (s *Slot) Replace(subscribe func() *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sub.Cancel()
	s.sub = subscribe()
}

// Clear cancels the stored subscription, if any, and reports whether there was one.
func (s *Slot) Clear() bool {
	s.mu.Lock()
	old := s.sub
	s.sub = nil
	s.mu.Unlock()

	old.Cancel()
	return old != nil
}

// Active reports whether the slot holds a live subscription.
func (s *Slot) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sub.Active()
}

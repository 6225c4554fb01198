package event

import (
	"sync"
	"testing"
)

func TestSignal_EmitOrder(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var got []string

	s.Subscribe(func(v int) { got = append(got, "a") })
	s.Subscribe(func(v int) { got = append(got, "b") })
	s.Emit(1)

	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("handlers ran as %v; want [a b]", got)
	}
}

func TestSubscription_Cancel(t *testing.T) {
	t.Parallel()

	var s Signal[string]
	calls := 0
	sub := s.Subscribe(func(string) { calls++ })

	s.Emit("x")
	sub.Cancel()
	sub.Cancel() // idempotent
	s.Emit("y")

	if calls != 1 {
		t.Errorf("handler called %d times; want 1", calls)
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d; want 0", s.Len())
	}
	if sub.Active() {
		t.Error("cancelled subscription reports active")
	}

	var nilSub *Subscription
	nilSub.Cancel()
}

func TestSignal_CancelDuringEmit(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var second *Subscription
	secondCalls := 0

	s.Subscribe(func(int) { second.Cancel() })
	second = s.Subscribe(func(int) { secondCalls++ })

	s.Emit(1)
	if secondCalls != 0 {
		t.Errorf("handler cancelled mid-emit ran %d times; want 0", secondCalls)
	}
}

func TestSlot_Replace(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var slot Slot
	var a, b int

	slot.Replace(func() *Subscription { return s.Subscribe(func(int) { a++ }) })
	slot.Replace(func() *Subscription { return s.Subscribe(func(int) { b++ }) })
	s.Emit(1)

	if a != 0 || b != 1 {
		t.Errorf("a=%d b=%d; want a=0 b=1", a, b)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d; want 1", s.Len())
	}

	if !slot.Clear() {
		t.Error("Clear() = false; want true")
	}
	if slot.Clear() {
		t.Error("second Clear() = true; want false")
	}
	if slot.Active() {
		t.Error("cleared slot reports active")
	}
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d; want 0", s.Len())
	}
}

func TestSignal_Concurrent(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var mu sync.Mutex
	total := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := s.Subscribe(func(v int) {
				mu.Lock()
				total += v
				mu.Unlock()
			})
			s.Emit(0)
			sub.Cancel()
		}()
	}
	wg.Wait()

	if s.Len() != 0 {
		t.Errorf("Len() = %d; want 0", s.Len())
	}
	if s.Subscribed() != 50 {
		t.Errorf("Subscribed() = %d; want 50", s.Subscribed())
	}
}

func TestSlot_ReplaceCancelsBeforeSubscribing(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var slot Slot

	slot.Replace(func() *Subscription { return s.Subscribe(func(int) {}) })
	slot.Replace(func() *Subscription {
		if n := s.Len(); n != 0 {
			t.Errorf("Len() while subscribing = %d; want 0", n)
		}
		return s.Subscribe(func(int) {})
	})

	if s.Len() != 1 {
		t.Errorf("Len() = %d; want 1", s.Len())
	}
}

func TestSlot_ConcurrentReplace(t *testing.T) {
	t.Parallel()

	var s Signal[int]
	var slot Slot

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				slot.Replace(func() *Subscription {
					if n := s.Len(); n != 0 {
						t.Errorf("Len() while subscribing = %d; want 0", n)
					}
					return s.Subscribe(func(int) {})
				})
				s.Emit(j)
			}
		}()
	}
	wg.Wait()

	if s.Len() != 1 {
		t.Errorf("Len() = %d; want 1", s.Len())
	}
}

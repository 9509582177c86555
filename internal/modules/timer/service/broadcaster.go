package service

import (
	"sync"

	"studyfocus/internal/modules/timer/domain"
)

// Broadcaster fans out state snapshots. Each subscriber holds at most one pending value and always
// sees the latest one; a new subscriber receives the current snapshot immediately.
type Broadcaster struct {
	mu      sync.Mutex
	current domain.SessionState
	subs    map[int]chan domain.SessionState
	nextID  int
}

func NewBroadcaster(initial domain.SessionState) *Broadcaster {
	return &Broadcaster{current: initial.Clone(), subs: map[int]chan domain.SessionState{}}
}

func (b *Broadcaster) Publish(state domain.SessionState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.current = state.Clone()
	for _, ch := range b.subs {
		offer(ch, b.current.Clone())
	}
}

func (b *Broadcaster) Current() domain.SessionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current.Clone()
}

// Subscribe returns a channel of snapshots and a cancel func that closes it.
func (b *Broadcaster) Subscribe() (<-chan domain.SessionState, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan domain.SessionState, 1)
	ch <- b.current.Clone()
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// offer replaces a stale pending value. Only the publisher sends, under b.mu.
func offer(ch chan domain.SessionState, state domain.SessionState) {
	select {
	case ch <- state:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- state
}

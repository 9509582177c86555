package service

import (
	"sync"

	"studyfocus/internal/modules/timer/domain"
)

// CompletionSlot holds the latest unconsumed completion event.
type CompletionSlot struct {
	mu    sync.Mutex
	event *domain.CompletedEvent
}

func (c *CompletionSlot) Put(event domain.CompletedEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.event = &event
}

// Consume hands the event out once; later calls report false until a new event is put.
func (c *CompletionSlot) Consume() (domain.CompletedEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.event == nil {
		return domain.CompletedEvent{}, false
	}
	event := *c.event
	c.event = nil
	return event, true
}

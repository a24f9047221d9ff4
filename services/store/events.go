package store

import (
	"sync"

	"Cineverse/models/postgres"
)

// Op is the kind of change a feed event describes.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// ChangeEvent is one notification from a change feed. It is a closed set:
// exactly one of the record pointers is non-nil and it matches Table, so
// consumers switch over (Table, Op) instead of shape-checking payloads.
type ChangeEvent struct {
	Table       Table                 `json:"table"`
	Op          Op                    `json:"op"`
	Meeting     *postgres.Meeting     `json:"meeting,omitempty"`
	Participant *postgres.Participant `json:"participant,omitempty"`
	ChatMessage *postgres.ChatMessage `json:"chat_message,omitempty"`
}

// Subscription is an owned feed resource: acquired with Store.Subscribe,
// released with Unsubscribe. After Unsubscribe the event channel is closed
// and no further events are delivered.
type Subscription struct {
	events chan ChangeEvent
	mu     sync.Mutex
	closed bool
	cancel func()
}

func newSubscription(buffer int, cancel func()) *Subscription {
	return &Subscription{
		events: make(chan ChangeEvent, buffer),
		cancel: cancel,
	}
}

func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

func (s *Subscription) Unsubscribe() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	close(s.events)
}

// deliver pushes an event without ever blocking the publisher. A consumer
// that fell behind loses events, same contract as a pub/sub transport; the
// reconciler recovers on its next bulk load.
func (s *Subscription) deliver(ev ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
	}
}

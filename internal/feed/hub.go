// Package feed implements the live activity-timeline subscription layer.
//
// The activity service publishes a full, freshly sorted snapshot of a trip's
// timeline after every successful mutation; subscribers receive snapshots on
// a channel. Delivery is latest-wins: a subscriber that falls behind skips
// intermediate snapshots but always observes the most recent one, so the
// final state after any mutation sequence is never missed.
package feed

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vagaroute/backend/internal/domain"
)

// Hub fans activity snapshots out to per-trip subscribers.
// The zero value is not usable; construct with NewHub.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*Subscription]struct{}
}

// Subscription is a live view of one trip's activity timeline.
// Receive snapshots from C; call Close exactly once when done.
type Subscription struct {
	// C delivers full sorted snapshots. It is closed by Close.
	C <-chan []domain.Activity

	hub    *Hub
	tripID uuid.UUID
	ch     chan []domain.Activity
	once   sync.Once
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[*Subscription]struct{})}
}

// Subscribe registers a new subscriber for the given trip.
// The caller must call Close on the returned Subscription to release it;
// an unclosed subscription leaks until the process exits.
func (h *Hub) Subscribe(tripID uuid.UUID) *Subscription {
	// Buffer of one: Publish replaces a pending unread snapshot instead of
	// blocking, which is what makes delivery latest-wins.
	ch := make(chan []domain.Activity, 1)
	sub := &Subscription{C: ch, hub: h, tripID: tripID, ch: ch}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[tripID] == nil {
		h.subs[tripID] = make(map[*Subscription]struct{})
	}
	h.subs[tripID][sub] = struct{}{}

	return sub
}

// Publish delivers a snapshot to every subscriber of the given trip.
// Publishers are serialized by the hub lock, so the drain-then-send below
// can never race another publisher; only the subscriber reads from ch.
func (h *Hub) Publish(tripID uuid.UUID, snapshot []domain.Activity) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[tripID] {
		select {
		case sub.ch <- snapshot:
		default:
			// Subscriber has an unread snapshot; replace it with the newer one.
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snapshot
		}
	}
}

// SubscriberCount reports how many subscriptions are open for a trip.
func (h *Hub) SubscriberCount(tripID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[tripID])
}

// Close unregisters the subscription and closes its channel.
// Safe to call more than once; only the first call has an effect.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs[s.tripID], s)
		if len(s.hub.subs[s.tripID]) == 0 {
			delete(s.hub.subs, s.tripID)
		}
		s.hub.mu.Unlock()
		close(s.ch)
	})
}

// Package storestream provides live fan-out of debug events to in-process
// subscribers, complementing the store's after-the-fact snapshots. Wire a
// broker into a store with [debugstore.WithObserver] and the broker's
// [Broker.Publish].
package storestream

import (
	"fmt"
	"sync"

	"github.com/h7su/debugstore"
)

// Filter restricts which events a subscriber receives. The zero value allows
// everything.
type Filter struct {
	Name string           `json:"name,omitempty"` // exact match on event name
	Kind *debugstore.Kind `json:"kind,omitempty"` // match on event kind
	ID   uint64           `json:"id,omitempty"`   // match on span id
}

// Allow reports whether the event passes the filter.
func (f Filter) Allow(ev debugstore.Event) bool {
	if f.Name != "" && ev.Name != f.Name {
		return false
	}
	if f.Kind != nil && ev.Kind != *f.Kind {
		return false
	}
	if f.ID != 0 && ev.ID != f.ID {
		return false
	}
	return true
}

// Broker fans out events to subscriber channels. Publishes never block: an
// event that doesn't fit in a subscriber's channel buffer is dropped for that
// subscriber and counted. The broker carries the store's degrade-don't-stall
// discipline through to streaming.
type Broker struct {
	mtx  sync.Mutex
	subs map[chan<- debugstore.Event]*subscriber
}

// NewBroker returns an empty broker.
func NewBroker() *Broker {
	return &Broker{
		subs: map[chan<- debugstore.Event]*subscriber{},
	}
}

// Publish delivers the event to every subscriber whose filter allows it.
func (b *Broker) Publish(ev debugstore.Event) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	// Fast path exit if there are no subscribers.
	if len(b.subs) <= 0 {
		return
	}

	for _, sub := range b.subs {
		if !sub.filter.Allow(ev) {
			sub.stats.Skips++
			continue
		}

		select {
		case sub.events <- ev:
			sub.stats.Sends++
		default:
			sub.stats.Drops++
		}
	}
}

// Subscribe registers the channel to receive events allowed by the filter.
// The channel's buffer is the subscriber's only backpressure budget: once
// it's full, further events are dropped for that subscriber.
func (b *Broker) Subscribe(ch chan<- debugstore.Event, f Filter) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if _, ok := b.subs[ch]; ok {
		return fmt.Errorf("already subscribed")
	}

	b.subs[ch] = &subscriber{
		events: ch,
		filter: f,
	}

	return nil
}

// Unsubscribe removes the channel and returns its final stats.
func (b *Broker) Unsubscribe(ch chan<- debugstore.Event) (Stats, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	sub, ok := b.subs[ch]
	if !ok {
		return Stats{}, fmt.Errorf("not subscribed")
	}

	delete(b.subs, ch)

	return sub.stats, nil
}

// SubscriberStats returns the current stats for an active subscription.
func (b *Broker) SubscriberStats(ch chan<- debugstore.Event) (Stats, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	sub, ok := b.subs[ch]
	if !ok {
		return Stats{}, fmt.Errorf("not subscribed")
	}

	return sub.stats, nil
}

// Stats count per-subscriber delivery outcomes.
type Stats struct {
	Skips int `json:"skips"`
	Sends int `json:"sends"`
	Drops int `json:"drops"`
}

// String implements fmt.Stringer.
func (s Stats) String() string {
	return fmt.Sprintf("skips=%d sends=%d drops=%d", s.Skips, s.Sends, s.Drops)
}

type subscriber struct {
	events chan<- debugstore.Event
	filter Filter
	stats  Stats
}

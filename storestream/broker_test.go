package storestream_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/storestream"
)

func assertEqual[T any](t *testing.T, have, want T) {
	t.Helper()
	if !cmp.Equal(have, want) {
		t.Fatal(cmp.Diff(have, want))
	}
}

func TestBrokerPublish(t *testing.T) {
	t.Parallel()

	b := storestream.NewBroker()
	s := debugstore.NewStore(debugstore.WithObserver(b.Publish))

	ch := make(chan debugstore.Event, 4)
	assertEqual(t, b.Subscribe(ch, storestream.Filter{}), nil)

	id := s.Begin("txn")
	s.Record("tick")
	s.End(id)

	assertEqual(t, len(ch), 3)
	assertEqual(t, (<-ch).Kind, debugstore.KindDurationStart)
	assertEqual(t, (<-ch).Kind, debugstore.KindPoint)
	assertEqual(t, (<-ch).Kind, debugstore.KindDurationEnd)

	stats, err := b.Unsubscribe(ch)
	assertEqual(t, err, nil)
	assertEqual(t, stats, storestream.Stats{Sends: 3})
}

func TestBrokerDropsWhenFull(t *testing.T) {
	t.Parallel()

	b := storestream.NewBroker()

	ch := make(chan debugstore.Event, 1)
	assertEqual(t, b.Subscribe(ch, storestream.Filter{}), nil)

	b.Publish(debugstore.Event{Name: "a"})
	b.Publish(debugstore.Event{Name: "b"})
	b.Publish(debugstore.Event{Name: "c"})

	stats, err := b.SubscriberStats(ch)
	assertEqual(t, err, nil)
	assertEqual(t, stats, storestream.Stats{Sends: 1, Drops: 2})

	// The subscriber kept the first event, not the latest.
	assertEqual(t, (<-ch).Name, "a")
}

func TestBrokerFilter(t *testing.T) {
	t.Parallel()

	b := storestream.NewBroker()

	point := debugstore.KindPoint
	ch := make(chan debugstore.Event, 8)
	assertEqual(t, b.Subscribe(ch, storestream.Filter{Kind: &point}), nil)

	b.Publish(debugstore.Event{Kind: debugstore.KindDurationStart, ID: 1, Name: "x"})
	b.Publish(debugstore.Event{Kind: debugstore.KindPoint, Name: "y"})
	b.Publish(debugstore.Event{Kind: debugstore.KindDurationEnd, ID: 1})

	stats, err := b.Unsubscribe(ch)
	assertEqual(t, err, nil)
	assertEqual(t, stats, storestream.Stats{Skips: 2, Sends: 1})
	assertEqual(t, (<-ch).Name, "y")
}

func TestBrokerSubscribeTwice(t *testing.T) {
	t.Parallel()

	b := storestream.NewBroker()

	ch := make(chan debugstore.Event, 1)
	assertEqual(t, b.Subscribe(ch, storestream.Filter{}), nil)

	if err := b.Subscribe(ch, storestream.Filter{}); err == nil {
		t.Fatal("want error on duplicate subscribe")
	}

	if _, err := b.Unsubscribe(ch); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}

	if _, err := b.Unsubscribe(ch); err == nil {
		t.Fatal("want error on duplicate unsubscribe")
	}
}

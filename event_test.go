package debugstore_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/h7su/debugstore"
)

func TestEventString(t *testing.T) {
	t.Parallel()

	when := time.UnixMilli(1234)

	for _, tc := range []struct {
		name string
		ev   debugstore.Event
		want string
	}{
		{
			name: "point with attrs",
			ev: debugstore.Event{
				ID:   0,
				Name: "boot",
				When: when,
				Kind: debugstore.KindPoint,
				Attrs: []debugstore.Attr{
					{Key: "k1", Value: "v1"},
					{Key: "k2", Value: "v2"},
				},
			},
			want: "ID:0,T:1234,N:boot,D:k1=v1;k2=v2",
		},
		{
			name: "duration end has no name section",
			ev: debugstore.Event{
				ID:   7,
				When: when,
				Kind: debugstore.KindDurationEnd,
			},
			want: "ID:7,T:1234",
		},
		{
			name: "no attrs omits the data section",
			ev: debugstore.Event{
				ID:   3,
				Name: "txn",
				When: when,
				Kind: debugstore.KindDurationStart,
			},
			want: "ID:3,T:1234,N:txn",
		},
		{
			name: "duplicate keys preserved in order",
			ev: debugstore.Event{
				ID:   0,
				Name: "dup",
				When: when,
				Kind: debugstore.KindPoint,
				Attrs: []debugstore.Attr{
					{Key: "k", Value: "first"},
					{Key: "k", Value: "second"},
				},
			},
			want: "ID:0,T:1234,N:dup,D:k=first;k=second",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assertEqual(t, tc.ev.String(), tc.want)
		})
	}
}

func TestEventJSON(t *testing.T) {
	t.Parallel()

	ev := debugstore.Event{
		ID:    5,
		Name:  "txn",
		When:  time.UnixMilli(99).UTC(),
		Kind:  debugstore.KindDurationStart,
		Attrs: []debugstore.Attr{{Key: "code", Value: "29"}},
	}

	data, err := json.Marshal(ev)
	assertEqual(t, err, nil)

	var have debugstore.Event
	assertEqual(t, json.Unmarshal(data, &have), nil)
	assertEqual(t, have, ev)
}

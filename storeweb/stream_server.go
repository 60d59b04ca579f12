package storeweb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/bernerdschaefer/eventsource"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/storestream"
)

// StreamServer serves live events from a broker as server-sent events.
// Subscribers can bound their buffer with ?buf=N and filter with ?name=,
// ?kind=, and ?id= query parameters.
type StreamServer struct {
	b *storestream.Broker
}

// NewStreamServer returns a stream server over the given broker.
func NewStreamServer(b *storestream.Broker) *StreamServer {
	return &StreamServer{
		b: b,
	}
}

// ServeHTTP implements http.Handler.
func (s *StreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}

	if !requestExplicitlyAccepts(r, "text/event-stream") {
		http.Error(w, "request must Accept: text/event-stream", http.StatusPreconditionRequired)
		return
	}

	var (
		buf = parseDefault(r.URL.Query().Get("buf"), strconv.Atoi, 10)
		ch  = make(chan debugstore.Event, buf)
		f   = parseStreamFilter(r)
	)

	if err := s.b.Subscribe(ch, f); err != nil {
		err = fmt.Errorf("subscribe: %w", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer s.b.Unsubscribe(ch)

	eventsource.Handler(func(lastID string, encoder *eventsource.Encoder, stop <-chan bool) {
		var seq uint64
		for {
			select {
			case ev := <-ch:
				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				seq++
				if err := encoder.Encode(eventsource.Event{
					Type: "event",
					ID:   strconv.FormatUint(seq, 10),
					Data: data,
				}); err != nil {
					return
				}

			case <-stop:
				return
			}
		}
	}).ServeHTTP(w, r)
}

func parseStreamFilter(r *http.Request) storestream.Filter {
	urlquery := r.URL.Query()

	f := storestream.Filter{
		Name: urlquery.Get("name"),
	}
	if urlquery.Has("kind") {
		kind := parseKindString(urlquery.Get("kind"))
		f.Kind = &kind
	}
	if id, err := strconv.ParseUint(urlquery.Get("id"), 10, 64); err == nil {
		f.ID = id
	}

	return f
}

func parseKindString(s string) debugstore.Kind {
	for _, k := range []debugstore.Kind{
		debugstore.KindPoint,
		debugstore.KindDurationStart,
		debugstore.KindDurationEnd,
	} {
		if k.String() == s {
			return k
		}
	}
	return debugstore.Kind(-1)
}

// Package storeweb exposes a debug store over HTTP: snapshots and stats on
// demand, live event streaming via server-sent events, instrumentation
// middleware for HTTP handlers, and a client for all of the above.
package storeweb

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/h7su/debugstore"
)

// Server serves a store's snapshot and stats.
//
//	GET /       the snapshot wire string as text/plain, or, when the request
//	            explicitly accepts application/json, a decoded JSON document
//	GET /stats  the store's bookkeeping counters as JSON
type Server struct {
	store *debugstore.Store
}

// NewServer returns a server over the given store.
func NewServer(store *debugstore.Store) *Server {
	return &Server{
		store: store,
	}
}

// SnapshotData is the JSON form of a snapshot. Unavailable is true when the
// event list could not be read within the store's lock wait; the stats still
// render, as in the text form.
type SnapshotData struct {
	Stats       debugstore.Stats   `json:"stats"`
	Events      []debugstore.Event `json:"events"`
	Unavailable bool               `json:"unavailable,omitempty"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "only GET is supported", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/stats":
		respondJSON(w, s.store.Stats())

	default:
		if requestExplicitlyAccepts(r, "application/json") {
			events, ok := s.store.Events()
			respondJSON(w, SnapshotData{
				Stats:       s.store.Stats(),
				Events:      events,
				Unavailable: !ok,
			})
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, s.store.Snapshot())
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v)
}

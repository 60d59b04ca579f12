// Package ezstore wraps a single process-wide [debugstore.Store] in a
// package-level API, for applications that want one shared recorder without
// wiring a store through their own plumbing. Everything here delegates to
// that one store; code that needs an independent store, for example in tests,
// should construct its own with [debugstore.NewStore].
package ezstore

import (
	"net/http"

	"github.com/h7su/debugstore"
	"github.com/h7su/debugstore/storeweb"
)

var store = debugstore.NewStore()

// Store returns the package-level store, for callers that need to pass it
// to other components.
func Store() *debugstore.Store {
	return store
}

// Begin records a duration-start event on the package-level store.
func Begin(name string, attrs ...debugstore.Attr) uint64 {
	return store.Begin(name, attrs...)
}

// Record captures a point event on the package-level store.
func Record(name string, attrs ...debugstore.Attr) {
	store.Record(name, attrs...)
}

// End closes the span opened by Begin.
func End(id uint64, attrs ...debugstore.Attr) {
	store.End(id, attrs...)
}

// Snapshot serializes the package-level store's recent history.
func Snapshot() string {
	return store.Snapshot()
}

// LockMissCount reports the package-level store's lock misses.
func LockMissCount() uint64 {
	return store.LockMissCount()
}

// Stats returns the package-level store's bookkeeping counters.
func Stats() debugstore.Stats {
	return store.Stats()
}

// Handler returns an HTTP handler serving the package-level store.
func Handler() http.Handler {
	return storeweb.NewServer(store)
}

// Middleware instruments an HTTP handler against the package-level store.
func Middleware() func(http.Handler) http.Handler {
	return storeweb.Middleware(store)
}

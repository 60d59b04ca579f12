package debugstore

import (
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// DefaultCapacity is the event limit for a store constructed without
	// WithCapacity.
	DefaultCapacity = 16

	// DefaultMaxWait is the bounded lock wait for a store constructed without
	// WithMaxWait.
	DefaultMaxWait = 20 * time.Millisecond

	// encodeVersion is the leading field of the snapshot wire string.
	encodeVersion = 1

	// nonClosableID marks events that cannot be closed: point events, and
	// the sentinel that the id generator never issues.
	nonClosableID uint64 = 0
)

// Store records debug events into bounded storage. Begin and End bracket
// duration spans sharing a generator-issued id; Record captures instantaneous
// point events. All methods are safe for concurrent use from any number of
// goroutines, including nested spans on a single goroutine.
//
// Nothing on the caller's path ever blocks beyond the configured maximum
// wait, and nothing ever panics or returns an error due to contention: all
// backpressure resolves to dropped data, a skipped insert, or a degraded
// snapshot.
type Store struct {
	idGenerator  atomic.Uint64
	totalEntries atomic.Uint64
	start        time.Time
	now          func() time.Time
	observe      func(Event)

	// Exactly one backend is non-nil, chosen at construction.
	guarded *guardedStorage[Event]
	drain   *DrainBuffer[Event]
}

// Option configures a store at construction.
type Option func(*storeConfig)

type storeConfig struct {
	capacity int
	maxWait  time.Duration
	now      func() time.Time
	observe  func(Event)
	useDrain bool
}

// WithCapacity sets the maximum number of retained events. Zero is valid and
// means every event is discarded on arrival.
func WithCapacity(n int) Option {
	return func(cfg *storeConfig) { cfg.capacity = n }
}

// WithMaxWait sets the bounded maximum wait for the storage lock. Ignored by
// drain-backed stores, which never wait.
func WithMaxWait(d time.Duration) Option {
	return func(cfg *storeConfig) { cfg.maxWait = d }
}

// WithClock overrides the store's time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(cfg *storeConfig) { cfg.now = now }
}

// WithObserver registers fn to be called with every event submitted to the
// store, whether or not the insert itself succeeds. fn runs synchronously on
// the caller's path and must not block.
func WithObserver(fn func(Event)) Option {
	return func(cfg *storeConfig) { cfg.observe = fn }
}

// WithDrainStorage replaces the default guarded ring buffer with a
// [DrainBuffer]. The store then never waits on a lock and never counts lock
// misses, but every snapshot consumes the events it reports.
func WithDrainStorage() Option {
	return func(cfg *storeConfig) { cfg.useDrain = true }
}

// NewStore constructs a store. Each store owns its storage exclusively;
// independent stores share nothing, which keeps them cheap to construct in
// tests. Processes that want a single shared instance can use package
// ezstore, or wire one store through their own plumbing.
func NewStore(opts ...Option) *Store {
	cfg := storeConfig{
		capacity: DefaultCapacity,
		maxWait:  DefaultMaxWait,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Store{
		start:   cfg.now(),
		now:     cfg.now,
		observe: cfg.observe,
	}

	switch {
	case cfg.useDrain:
		s.drain = NewDrainBuffer[Event](cfg.capacity)
	default:
		s.guarded = newGuardedStorage[Event](cfg.capacity, cfg.maxWait)
	}

	return s
}

// Begin records a duration-start event with the given name and attributes,
// and returns the id that closes it. Ids are nonzero and increase
// monotonically across goroutines.
//
// The id is returned even when the insert itself timed out: callers cannot
// observe storage failures, and a returned id is always valid to pass to End,
// though its existence is no proof the start event was retained.
func (s *Store) Begin(name string, attrs ...Attr) uint64 {
	id := s.generateID()
	s.submit(Event{
		ID:    id,
		Name:  name,
		When:  s.now(),
		Kind:  KindDurationStart,
		Attrs: attrs,
	})
	return id
}

// Record captures an instantaneous point event. Fire and forget.
func (s *Store) Record(name string, attrs ...Attr) {
	s.submit(Event{
		ID:    nonClosableID,
		Name:  name,
		When:  s.now(),
		Kind:  KindPoint,
		Attrs: attrs,
	})
}

// End records a duration-end event closing the span opened by Begin. It
// carries no name; the id alone correlates it to its start. End with the zero
// sentinel is a no-op. An id never issued by this store is stored as an
// ordinary duration-end event matching no start; storage is unaffected.
func (s *Store) End(id uint64, attrs ...Attr) {
	if id == nonClosableID {
		return
	}
	s.submit(Event{
		ID:    id,
		When:  s.now(),
		Kind:  KindDurationEnd,
		Attrs: attrs,
	})
}

// generateID returns the next id, skipping the reserved zero sentinel even
// across wrap-around. Ids may in principle repeat after 2^64 draws; nothing
// depends on global uniqueness beyond matching one open span to its close
// within a short window.
func (s *Store) generateID() uint64 {
	id := s.idGenerator.Add(1)
	for id == nonClosableID {
		id = s.idGenerator.Add(1)
	}
	return id
}

func (s *Store) submit(ev Event) {
	if s.observe != nil {
		s.observe(ev)
	}

	if s.drain != nil {
		s.drain.ForcePush(ev)
		s.totalEntries.Add(1)
		return
	}

	if err := s.guarded.insert(ev); err == nil {
		s.totalEntries.Add(1)
	}
}

// Snapshot serializes recent history as a single line:
//
//	<version>,<length>,<uptime-ms>::<event>||<event>||...
//
// The length field is -1 when the current length could not be determined
// within the lock wait, and the event list collapses to a single "-" when the
// fold itself timed out. The header always renders.
//
// Over the default guarded backend, snapshots are repeatable and leave the
// stored events in place. Over a drain backend, a snapshot consumes the
// events it reports.
func (s *Store) Snapshot() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(encodeVersion))
	sb.WriteByte(',')
	sb.WriteString(strconv.Itoa(s.lengthOrSentinel()))
	sb.WriteByte(',')
	sb.WriteString(strconv.FormatInt(s.uptime().Milliseconds(), 10))
	sb.WriteString("::")

	combine := func(acc string, ev Event) string {
		if acc != "" {
			acc += "||"
		}
		return acc + ev.String()
	}

	if s.drain != nil {
		var acc string
		for _, ev := range s.drain.Drain() {
			acc = combine(acc, ev)
		}
		sb.WriteString(acc)
		return sb.String()
	}

	if body, ok := fold(s.guarded, "", combine); ok {
		sb.WriteString(body)
	} else {
		sb.WriteString("-")
	}

	return sb.String()
}

// Events returns a copy of the stored events, oldest first. The boolean is
// false when the storage lock could not be acquired within the bound. Over a
// drain backend, Events consumes what it returns, like Snapshot.
func (s *Store) Events() ([]Event, bool) {
	if s.drain != nil {
		return s.drain.Drain(), true
	}
	return fold(s.guarded, []Event(nil), func(acc []Event, ev Event) []Event {
		return append(acc, ev)
	})
}

// LockMissCount reports how many storage operations timed out waiting for
// the lock. Diagnostic only: non-decreasing, and always zero for drain-backed
// stores, which have no lock to miss.
func (s *Store) LockMissCount() uint64 {
	if s.drain != nil {
		return 0
	}
	return s.guarded.lockMisses()
}

// Stats is a point-in-time summary of the store's own bookkeeping. All
// fields come from lock-free counters except Length, which is -1 when the
// storage lock could not be acquired.
type Stats struct {
	TotalEntries uint64        `json:"total_entries"`
	Length       int           `json:"length"`
	LockMisses   uint64        `json:"lock_misses"`
	Uptime       time.Duration `json:"uptime"`
}

// Stats returns the store's current bookkeeping counters.
func (s *Store) Stats() Stats {
	return Stats{
		TotalEntries: s.totalEntries.Load(),
		Length:       s.lengthOrSentinel(),
		LockMisses:   s.LockMissCount(),
		Uptime:       s.uptime(),
	}
}

func (s *Store) lengthOrSentinel() int {
	if s.drain != nil {
		return s.drain.Len()
	}
	n, err := s.guarded.length()
	if err != nil {
		return -1
	}
	return n
}

func (s *Store) uptime() time.Duration {
	return s.now().Sub(s.start)
}

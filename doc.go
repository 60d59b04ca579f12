// Package debugstore provides a concurrent, bounded, in-process recorder for
// short-lived debug events: instantaneous point events, and duration spans
// bracketed by begin/end pairs. It is designed to be called from hot paths,
// for example inside an IPC transaction handler, without ever blocking the
// caller for longer than a small configured bound, and without growing memory
// after construction.
//
// The store keeps only the most recent events, in a fixed-capacity ring
// buffer that silently overwrites its oldest entries. The buffer sits behind
// a lock with a bounded maximum wait: an insert that cannot take the lock in
// time is dropped and counted, never retried and never surfaced to the caller
// as an error. Under sustained contention the observable signals are a rising
// [Store.LockMissCount] and less complete snapshots, not a stalled caller.
//
// [Store.Snapshot] serializes recent history into a compact single-line wire
// string on demand. Snapshots over the default backend are repeatable and
// non-destructive.
//
// Most applications with simple needs can use
// [github.com/h7su/debugstore/ezstore], which wraps a single process-wide
// store in a package-level API.
package debugstore

// Package asyncsink decouples a slow destination from the dispatch
// path.
//
// A Sink wraps an io.Writer with a bounded queue drained by one
// background goroutine. It is a multistream.MetadataSink, so it knows
// the level of every record it is handed. When the queue is full the
// per-level OverflowPolicy decides what happens: DropNewest (default
// for trace through warn), DropOldest, or Block with a timeout after
// which the record is written synchronously (default for error and
// fatal). Low-priority records never stall the caller while errors
// are never silently dropped.
//
// Sinks track dropped, blocked, processed and failed counts, which can
// be read at any time via Stats.
package asyncsink

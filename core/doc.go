// Package core defines the shared types used across multistream.
//
// Level is a numeric severity where lower values are more verbose:
// trace=10, debug=20, info=30, warn=40, error=50, fatal=60. SilentLevel
// sits above every real level and is used to mute a destination
// without removing it. ParseLevel resolves the symbolic names and
// reports ErrUnknownLevel for anything else, so a typo in a
// configuration file fails loudly instead of producing a level that
// sorts unpredictably.
//
// Entry represents a single log event produced by the logger package.
// Entries are pooled via sync.Pool; callers get one with GetEntry and
// return it with PutEntry once it has been encoded.
//
// Field encodes values into fixed-size numeric fields (Int64, Float64)
// wherever possible so that common types like int, bool, and time.Time
// never escape to the heap. The Any field exists as a fallback for
// arbitrary types but will cause an allocation.
package core

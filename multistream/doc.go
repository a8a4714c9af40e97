// Package multistream fans a single stream of encoded log records out
// to many destinations, each filtered by its own minimum level.
//
// A Dispatcher keeps its destinations sorted ascending by level, with
// ties broken by registration order. Write walks that list and stops
// at the first destination whose level is above the record's level,
// so the cost of a write grows with the number of destinations that
// actually receive it, not with the number registered.
//
// The record level is not part of the payload. It travels out of band
// through SetMetadata, which an upstream logger calls right before
// Write together with the raw message, the structured fields and a
// reference to itself. Destinations that implement MetadataSink get
// the same metadata immediately before their own Write, which lets a
// sink act on the level without re-parsing the bytes. A Dispatcher is
// itself a MetadataSink, so dispatchers nest.
//
// Destinations are registered with one of the Spec variants:
//
//	d, err := multistream.New(
//	    multistream.ByHandle{Sink: os.Stdout},                         // info and above
//	    multistream.BySymbolicLevel{Sink: errLog, Name: "error"},      // error and above
//	    multistream.ByExplicitLevel{Sink: debugLog, Level: core.DebugLevel},
//	)
//
// A Dispatcher performs no locking. Callers that share one between
// goroutines must serialize Add, SetMetadata and Write themselves; the
// logger and zapstream packages do this with a mutex.
package multistream

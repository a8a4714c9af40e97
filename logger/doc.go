// Package logger is the structured front end of multistream. It turns
// calls like Info and Errorf into encoded records and writes them to an
// io.Writer, normally a *multistream.Dispatcher.
//
// A Logger is immutable after construction: the output, level,
// formatter and default fields are set once via the Builder. Child
// loggers created with With share the parent's output and lock.
//
//	d, _ := multistream.New(
//	    multistream.ByHandle{Sink: os.Stdout},
//	    multistream.BySymbolicLevel{Sink: errFile, Name: "error"},
//	)
//	log := logger.NewBuilder().
//	    WithOutput(d).
//	    WithLevel(logger.DebugLevel).
//	    Build()
//	log.Info("ready", logger.Int("port", 8080))
//
// Before each write the Logger hands the record's level, raw message,
// call fields and itself to the output through SetMetadata when the
// output is a multistream.MetadataSink. The SetMetadata and Write pair
// runs under the Logger's mutex, so one Logger is safe for concurrent
// use. Several Loggers over one Dispatcher must share a lock via
// WithLock.
//
// Level checks happen before any allocation. When the output reports
// Enabled (a Dispatcher does, from its lowest destination level),
// records no destination would accept are not encoded at all.
package logger

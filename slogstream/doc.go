// Package slogstream lets log/slog drive a multistream.Dispatcher.
//
// Handler implements slog.Handler. Records are formatted once with a
// formatter.Formatter (JSON by default), the level, message and
// attributes are passed to the Dispatcher as metadata, and the bytes
// are fanned out to every destination whose level admits the record:
//
//	d, _ := multistream.New(
//	    multistream.ByHandle{Sink: os.Stdout},
//	    multistream.BySymbolicLevel{Sink: alerts, Name: "error"},
//	)
//	log := slog.New(slogstream.NewHandler(slogstream.Config{Output: d}))
//
// slog levels map onto the numeric scale in core by range: below
// Debug is trace, Debug up to Info is debug, and so on up to Error.
// Anything at Error+4 or above is fatal.
//
// Groups flatten into dotted keys, so slog.Group("req", "id", 7)
// becomes the field req.id=7.
package slogstream

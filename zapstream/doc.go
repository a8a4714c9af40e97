// Package zapstream plugs a multistream.Dispatcher into zap.
//
// Core implements zapcore.Core. Each entry is encoded once, then the
// zap level, message and fields are handed to the Dispatcher as
// metadata and the encoded bytes are fanned out to every destination
// whose level admits the entry:
//
//	d, _ := multistream.New(
//	    multistream.ByHandle{Sink: os.Stdout},
//	    multistream.BySymbolicLevel{Sink: alerts, Name: "error"},
//	)
//	log := zap.New(zapstream.NewCore(zapstream.Config{Output: d}))
//
// zap levels are mapped onto the numeric scale in core: Debug=20,
// Info=30, Warn=40, Error=50 and DPanic, Panic and Fatal all become 60.
// The default encoder writes that number under "level", epoch
// milliseconds under "time" and the message under "msg".
package zapstream

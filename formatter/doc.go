// Package formatter turns log entries into the byte payloads that a
// multistream.Dispatcher fans out.
//
// It exposes two interfaces: Formatter, which returns a []byte, and
// WriterFormatter, which writes directly to an io.Writer.
//
// JSONFormatter writes one object per line with the numeric level
// first ({"level":30,"time":...,"msg":...}) so line-oriented tools,
// including the multistream command, can recover the level without a
// full parse. TextFormatter writes a logfmt line
// (time=... level=warn msg="..." key=value) with named levels by name
// and any other level as its number, readable with
// core.Level.UnmarshalText. Both keep a record on one line, which is
// the unit a Dispatcher forwards.
//
// Both formatters use a pooled bytes.Buffer internally and rely on
// Go's Append-style functions (time.AppendFormat, strconv.AppendInt)
// to avoid per-call allocations. Buffers larger than 64 KiB are not
// returned to the pool.
package formatter

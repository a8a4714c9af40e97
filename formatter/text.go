package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/philipp01105/multistream/core"
)

// TextFormatter writes one logfmt line per entry:
//
//	time=2026-01-15T12:00:00Z level=warn msg="disk almost full" caller=main.go:42 free=3%
//
// Named levels are written by name and any other level as its number,
// so core.Level.UnmarshalText reads every level back. Values that
// contain spaces, quotes, '=' or control characters are quoted, which
// keeps a record on a single line whatever its message.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an entry as a logfmt line
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(entry, buf)
	return detach(buf), nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	buf := getBuffer()
	defer putBuffer(buf)

	f.formatToBuffer(entry, buf)
	_, err := w.Write(buf.Bytes())
	return err
}

func (f *TextFormatter) formatToBuffer(entry *core.Entry, buf *bytes.Buffer) {
	if !f.OmitTime {
		buf.WriteString("time=")
		ts := entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat)
		if bytes.ContainsAny(ts, " \"=") {
			buf.Write(strconv.AppendQuote(nil, string(ts)))
		} else {
			buf.Write(ts)
		}
		buf.WriteByte(' ')
	}

	buf.WriteString("level=")
	lvl, _ := entry.Level.AppendText(buf.AvailableBuffer())
	buf.Write(lvl)

	buf.WriteString(" msg=")
	appendLogfmtValue(buf, entry.Message)

	if f.IncludeCaller && entry.Caller.Defined {
		buf.WriteString(" caller=")
		buf.WriteString(entry.Caller.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
	}

	for _, field := range entry.Fields {
		buf.WriteByte(' ')
		appendLogfmtKey(buf, field.Key)
		buf.WriteByte('=')
		appendLogfmtValue(buf, field.StringValue())
	}

	buf.WriteByte('\n')
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}
	for _, r := range s {
		if r <= ' ' || r == '=' || r == '"' || r == utf8.RuneError || !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}

func appendLogfmtValue(buf *bytes.Buffer, s string) {
	if !needsQuote(s) {
		buf.WriteString(s)
		return
	}
	buf.Write(strconv.AppendQuote(buf.AvailableBuffer(), s))
}

// appendLogfmtKey replaces characters a key cannot hold with '_'.
func appendLogfmtKey(buf *bytes.Buffer, key string) {
	if key == "" {
		buf.WriteByte('_')
		return
	}
	for _, r := range key {
		if r <= ' ' || r == '=' || r == '"' || !unicode.IsPrint(r) {
			buf.WriteByte('_')
			continue
		}
		buf.WriteRune(r)
	}
}

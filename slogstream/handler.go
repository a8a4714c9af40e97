package slogstream

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/formatter"
	"github.com/philipp01105/multistream/multistream"
)

type enabler interface {
	Enabled(level core.Level) bool
}

// Config holds configuration for a slog Handler
type Config struct {
	// Output receives the formatted records, usually a *multistream.Dispatcher
	Output io.Writer
	// Formatter to use (default: JSONFormatter)
	Formatter formatter.Formatter
	// Level is the minimum record level (default: TraceLevel)
	Level core.Level
	// AddSource records the caller of each log call
	AddSource bool
	// Lock serializes SetMetadata and Write on Output (default: a new mutex).
	// Share it with any other writer of the same Dispatcher.
	Lock *sync.Mutex
}

// Handler is a slog.Handler writing through a multistream Dispatcher.
type Handler struct {
	out       io.Writer
	meta      multistream.MetadataSink
	gate      enabler
	mu        *sync.Mutex
	formatter formatter.Formatter
	level     core.Level
	addSource bool
	attrs     []core.Field
	group     string
}

var _ slog.Handler = (*Handler)(nil)

// NewHandler creates a new Handler
func NewHandler(cfg Config) *Handler {
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewJSONFormatter(formatter.Config{IncludeCaller: cfg.AddSource})
	}
	if cfg.Level == 0 {
		cfg.Level = core.TraceLevel
	}
	if cfg.Lock == nil {
		cfg.Lock = &sync.Mutex{}
	}

	h := &Handler{
		out:       cfg.Output,
		mu:        cfg.Lock,
		formatter: cfg.Formatter,
		level:     cfg.Level,
		addSource: cfg.AddSource,
	}
	h.meta, _ = cfg.Output.(multistream.MetadataSink)
	h.gate, _ = cfg.Output.(enabler)
	return h
}

// Enabled reports whether a record at level passes the handler level
// and would reach at least one destination.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	l := FromSlogLevel(level)
	if l < h.level {
		return false
	}
	return h.gate == nil || h.gate.Enabled(l)
}

// Handle formats the record and dispatches it.
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	fields := make([]core.Field, 0, len(h.attrs)+record.NumAttrs())
	fields = append(fields, h.attrs...)
	record.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.group, a)
		return true
	})

	level := FromSlogLevel(record.Level)
	entry := core.GetEntry()
	entry.Time = record.Time
	if entry.Time.IsZero() {
		entry.Time = time.Now()
	}
	entry.Level = level
	entry.Message = record.Message
	entry.Fields = append(entry.Fields, fields...)
	if h.addSource && record.PC != 0 {
		entry.Caller = callerFromPC(record.PC)
	}

	data, err := h.formatter.Format(entry)
	core.PutEntry(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.meta != nil {
		h.meta.SetMetadata(multistream.Metadata{
			Level:  level,
			Msg:    record.Message,
			Fields: fields,
			Logger: h,
		})
	}
	_, err = h.out.Write(data)
	return err
}

// WithAttrs returns a new Handler with additional attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	clone := *h
	clone.attrs = make([]core.Field, len(h.attrs), len(h.attrs)+len(attrs))
	copy(clone.attrs, h.attrs)
	for _, a := range attrs {
		clone.attrs = appendAttr(clone.attrs, h.group, a)
	}
	return &clone
}

// WithGroup returns a new Handler that prefixes later keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = joinKey(h.group, name)
	return &clone
}

func joinKey(group, key string) string {
	if group == "" {
		return key
	}
	return group + "." + key
}

// appendAttr converts a to fields, flattening groups into dotted keys.
func appendAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}

	key := joinKey(group, a.Key)
	switch a.Value.Kind() {
	case slog.KindString:
		return append(fields, core.Field{Key: key, Type: core.StringType, Str: a.Value.String()})
	case slog.KindInt64:
		return append(fields, core.Field{Key: key, Type: core.Int64Type, Int64: a.Value.Int64()})
	case slog.KindUint64:
		return append(fields, core.Field{Key: key, Type: core.AnyType, Any: a.Value.Uint64()})
	case slog.KindFloat64:
		return append(fields, core.Field{Key: key, Type: core.Float64Type, Float64: a.Value.Float64()})
	case slog.KindBool:
		var v int64
		if a.Value.Bool() {
			v = 1
		}
		return append(fields, core.Field{Key: key, Type: core.BoolType, Int64: v})
	case slog.KindTime:
		return append(fields, core.Field{Key: key, Type: core.TimeType, Int64: a.Value.Time().UnixNano()})
	case slog.KindDuration:
		return append(fields, core.Field{Key: key, Type: core.DurationType, Int64: int64(a.Value.Duration())})
	case slog.KindGroup:
		// an inline group with an empty key joins its parent
		prefix := group
		if a.Key != "" {
			prefix = key
		}
		for _, ga := range a.Value.Group() {
			fields = appendAttr(fields, prefix, ga)
		}
		return fields
	default:
		if err, ok := a.Value.Any().(error); ok {
			return append(fields, core.Field{Key: key, Type: core.ErrorType, Str: err.Error()})
		}
		return append(fields, core.Field{Key: key, Type: core.AnyType, Any: a.Value.Any()})
	}
}

func callerFromPC(pc uintptr) core.CallerInfo {
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File == "" {
		return core.CallerInfo{}
	}
	return core.CallerInfo{
		File:      frame.File,
		ShortFile: filepath.Base(frame.File),
		Line:      frame.Line,
		Function:  frame.Function,
		Defined:   true,
	}
}

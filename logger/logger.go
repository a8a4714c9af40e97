package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/formatter"
	"github.com/philipp01105/multistream/multistream"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// enabler is implemented by outputs that can tell up front whether a
// level would be written anywhere, such as *multistream.Dispatcher.
type enabler interface {
	Enabled(level core.Level) bool
}

// Logger is the main logging interface (immutable)
type Logger struct {
	out           io.Writer
	meta          multistream.MetadataSink
	gate          enabler
	mu            *sync.Mutex
	formatter     formatter.Formatter
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	coarseClock   bool
	onError       func(error)
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	out           io.Writer
	mu            *sync.Mutex
	formatter     formatter.Formatter
	level         core.Level
	fields        []core.Field
	includeCaller bool
	callerSkip    int
	coarseClock   bool
	onError       func(error)
}

// NewBuilder creates a new logger builder
func NewBuilder() *Builder {
	return &Builder{
		level:      core.InfoLevel,
		callerSkip: 2, // Info/Log -> log -> GetCaller
	}
}

// WithOutput sets where encoded records go, usually a
// *multistream.Dispatcher.
func (b *Builder) WithOutput(w io.Writer) *Builder {
	b.out = w
	return b
}

// WithLock sets the mutex that serializes writes to the output. Loggers
// built separately over the same Dispatcher must share one lock.
func (b *Builder) WithLock(mu *sync.Mutex) *Builder {
	b.mu = mu
	return b
}

// WithFormatter sets the formatter (default: JSONFormatter)
func (b *Builder) WithFormatter(f formatter.Formatter) *Builder {
	b.formatter = f
	return b
}

// WithLevel sets the log level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.level = level
	return b
}

// WithFields adds default fields to all log entries
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// WithCaller enables caller information
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.includeCaller = enabled
	return b
}

// WithCoarseClock timestamps entries from the cached clock in core
// instead of calling time.Now for every entry.
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	b.coarseClock = enabled
	return b
}

// WithErrorHandler sets a callback for encode and write failures.
// Without one they are dropped.
func (b *Builder) WithErrorHandler(fn func(error)) *Builder {
	b.onError = fn
	return b
}

// Build creates the Logger instance
func (b *Builder) Build() *Logger {
	l := &Logger{
		out:           b.out,
		mu:            b.mu,
		formatter:     b.formatter,
		level:         b.level,
		fields:        b.fields,
		includeCaller: b.includeCaller,
		callerSkip:    b.callerSkip,
		coarseClock:   b.coarseClock,
		onError:       b.onError,
	}
	if l.mu == nil {
		l.mu = &sync.Mutex{}
	}
	if l.formatter == nil {
		l.formatter = formatter.NewJSONFormatter(formatter.Config{})
	}
	l.meta, _ = b.out.(multistream.MetadataSink)
	l.gate, _ = b.out.(enabler)
	if l.coarseClock {
		core.StartCoarseClock()
	}
	return l
}

// With creates a new Logger with additional fields (immutable operation).
// The child writes to the same output under the same lock.
func (l *Logger) With(fields ...core.Field) *Logger {
	newFields := make([]core.Field, len(l.fields)+len(fields))
	copy(newFields, l.fields)
	copy(newFields[len(l.fields):], fields)

	child := *l
	child.fields = newFields
	return &child
}

// Level returns the minimum level of the logger
func (l *Logger) Level() core.Level {
	return l.level
}

// Enabled reports whether a record at level would be encoded and written.
func (l *Logger) Enabled(level core.Level) bool {
	if level < l.level || l.out == nil {
		return false
	}
	return l.gate == nil || l.gate.Enabled(level)
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if level < l.level {
		return
	}
	l.log(level, msg, fields)
}

func (l *Logger) log(level core.Level, msg string, fields []core.Field) {
	if l.out == nil {
		return
	}
	// Skip encoding when no destination would take the record.
	if l.gate != nil && !l.gate.Enabled(level) {
		return
	}

	entry := core.GetEntry()
	if l.coarseClock {
		entry.Time = core.CoarseNow()
	} else {
		entry.Time = time.Now()
	}
	entry.Level = level
	entry.Message = msg
	if len(l.fields) > 0 {
		entry.Fields = append(entry.Fields, l.fields...)
	}
	if len(fields) > 0 {
		entry.Fields = append(entry.Fields, fields...)
	}
	if l.includeCaller {
		entry.Caller = core.GetCaller(l.callerSkip)
	}

	data, err := l.formatter.Format(entry)
	core.PutEntry(entry)
	if err != nil {
		l.fail(err)
		return
	}

	l.mu.Lock()
	if l.meta != nil {
		l.meta.SetMetadata(multistream.Metadata{
			Level:  level,
			Msg:    msg,
			Fields: fields,
			Logger: l,
		})
	}
	_, err = l.out.Write(data)
	l.mu.Unlock()

	if err != nil {
		l.fail(err)
	}
}

func (l *Logger) fail(err error) {
	if l.onError != nil {
		l.onError(err)
	}
}

// Trace logs a trace message
func (l *Logger) Trace(msg string, fields ...core.Field) {
	if core.TraceLevel < l.level {
		return
	}
	l.log(core.TraceLevel, msg, fields)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...core.Field) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...core.Field) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, msg, fields)
}

// Fatal logs a fatal message and exits the program with os.Exit(1)
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	l.log(core.FatalLevel, msg, fields)
	osExit(1)
}

// Tracef logs a trace message with formatting
func (l *Logger) Tracef(format string, args ...any) {
	if core.TraceLevel < l.level {
		return
	}
	l.log(core.TraceLevel, fmt.Sprintf(format, args...), nil)
}

// Debugf logs a debug message with formatting
func (l *Logger) Debugf(format string, args ...any) {
	if core.DebugLevel < l.level {
		return
	}
	l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
}

// Infof logs an info message with formatting
func (l *Logger) Infof(format string, args ...any) {
	if core.InfoLevel < l.level {
		return
	}
	l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a warning message with formatting
func (l *Logger) Warnf(format string, args ...any) {
	if core.WarnLevel < l.level {
		return
	}
	l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
}

// Errorf logs an error message with formatting
func (l *Logger) Errorf(format string, args ...any) {
	if core.ErrorLevel < l.level {
		return
	}
	l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
}

// Fatalf logs a fatal message with formatting and exits the program with os.Exit(1)
func (l *Logger) Fatalf(format string, args ...any) {
	l.log(core.FatalLevel, fmt.Sprintf(format, args...), nil)
	osExit(1)
}

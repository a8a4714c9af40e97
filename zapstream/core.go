package zapstream

import (
	"io"
	"math"
	"sync"

	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

type enabler interface {
	Enabled(level core.Level) bool
}

// Config holds configuration for a zapstream Core
type Config struct {
	// Output receives the encoded entries, usually a *multistream.Dispatcher
	Output io.Writer
	// Encoder to use (default: JSON with numeric levels, see NewEncoderConfig)
	Encoder zapcore.Encoder
	// Level gates entries before they are encoded (default: every level)
	Level zapcore.LevelEnabler
	// Lock serializes SetMetadata and Write on Output (default: a new mutex).
	// Share it with any other writer of the same Dispatcher.
	Lock *sync.Mutex
}

// Core is a zapcore.Core writing through a multistream Dispatcher.
type Core struct {
	level  zapcore.LevelEnabler
	enc    zapcore.Encoder
	out    io.Writer
	meta   multistream.MetadataSink
	gate   enabler
	mu     *sync.Mutex
	fields []core.Field
}

var _ zapcore.Core = (*Core)(nil)

// NewEncoderConfig returns the encoder configuration used when
// Config.Encoder is nil.
func NewEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		LevelKey:       "level",
		TimeKey:        "time",
		MessageKey:     "msg",
		NameKey:        "name",
		CallerKey:      "caller",
		StacktraceKey:  "stack",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    NumericLevelEncoder,
		EncodeTime:     zapcore.EpochMillisTimeEncoder,
		EncodeDuration: zapcore.NanosDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewCore creates a new Core
func NewCore(cfg Config) *Core {
	if cfg.Encoder == nil {
		cfg.Encoder = zapcore.NewJSONEncoder(NewEncoderConfig())
	}
	if cfg.Level == nil {
		cfg.Level = zapcore.LevelEnabler(zapcore.DebugLevel - 1)
	}
	if cfg.Lock == nil {
		cfg.Lock = &sync.Mutex{}
	}
	if cfg.Output == nil {
		cfg.Output = io.Discard
	}

	c := &Core{
		level: cfg.Level,
		enc:   cfg.Encoder,
		out:   cfg.Output,
		mu:    cfg.Lock,
	}
	c.meta, _ = cfg.Output.(multistream.MetadataSink)
	c.gate, _ = cfg.Output.(enabler)
	return c
}

// Enabled reports whether an entry at lvl passes the configured level
// and would reach at least one destination.
func (c *Core) Enabled(lvl zapcore.Level) bool {
	if !c.level.Enabled(lvl) {
		return false
	}
	return c.gate == nil || c.gate.Enabled(FromZapLevel(lvl))
}

// With returns a child Core with fields added to every entry.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.enc = c.enc.Clone()
	for i := range fields {
		fields[i].AddTo(clone.enc)
	}
	clone.fields = append(append([]core.Field(nil), c.fields...), toFields(fields)...)
	return &clone
}

// Check adds c to ce when the entry is enabled.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write encodes the entry and dispatches it.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	buf, err := c.enc.EncodeEntry(ent, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	c.mu.Lock()
	if c.meta != nil {
		c.meta.SetMetadata(multistream.Metadata{
			Level:  FromZapLevel(ent.Level),
			Msg:    ent.Message,
			Fields: append(append([]core.Field(nil), c.fields...), toFields(fields)...),
			Logger: c,
		})
	}
	_, err = c.out.Write(buf.Bytes())
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if ent.Level > zapcore.ErrorLevel {
		// Panic and Fatal may end the process; flush now.
		return c.Sync()
	}
	return nil
}

// Sync flushes the output when it supports it.
func (c *Core) Sync() error {
	if s, ok := c.out.(interface{ Sync() error }); ok {
		c.mu.Lock()
		defer c.mu.Unlock()
		return s.Sync()
	}
	return nil
}

// toFields converts zap fields to core fields for metadata consumers.
func toFields(fields []zapcore.Field) []core.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]core.Field, 0, len(fields))
	for _, f := range fields {
		switch f.Type {
		case zapcore.StringType:
			out = append(out, core.Field{Key: f.Key, Type: core.StringType, Str: f.String})
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
			out = append(out, core.Field{Key: f.Key, Type: core.Int64Type, Int64: f.Integer})
		case zapcore.BoolType:
			out = append(out, core.Field{Key: f.Key, Type: core.BoolType, Int64: f.Integer})
		case zapcore.Float64Type:
			out = append(out, core.Field{Key: f.Key, Type: core.Float64Type, Float64: math.Float64frombits(uint64(f.Integer))})
		case zapcore.DurationType:
			out = append(out, core.Field{Key: f.Key, Type: core.DurationType, Int64: f.Integer})
		case zapcore.TimeType:
			if f.Interface == nil {
				out = append(out, core.Field{Key: f.Key, Type: core.TimeType, Int64: f.Integer})
				break
			}
			fallthrough
		case zapcore.ErrorType:
			if err, ok := f.Interface.(error); ok {
				out = append(out, core.Field{Key: f.Key, Type: core.ErrorType, Str: err.Error()})
				break
			}
			fallthrough
		default:
			m := zapcore.NewMapObjectEncoder()
			f.AddTo(m)
			for k, v := range m.Fields {
				out = append(out, core.Field{Key: k, Type: core.AnyType, Any: v})
			}
		}
	}
	return out
}

package zapstream

import (
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/multistream/core"
)

// FromZapLevel maps a zap level onto the numeric scale.
func FromZapLevel(l zapcore.Level) core.Level {
	switch {
	case l < zapcore.DebugLevel:
		return core.TraceLevel
	case l == zapcore.DebugLevel:
		return core.DebugLevel
	case l == zapcore.InfoLevel:
		return core.InfoLevel
	case l == zapcore.WarnLevel:
		return core.WarnLevel
	case l == zapcore.ErrorLevel:
		return core.ErrorLevel
	default:
		return core.FatalLevel
	}
}

// ToZapLevel maps a numeric level onto the closest zap level at or
// below it. Trace has no zap equivalent and becomes Debug.
func ToZapLevel(l core.Level) zapcore.Level {
	switch {
	case l < core.InfoLevel:
		return zapcore.DebugLevel
	case l < core.WarnLevel:
		return zapcore.InfoLevel
	case l < core.ErrorLevel:
		return zapcore.WarnLevel
	case l < core.FatalLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.FatalLevel
	}
}

// NumericLevelEncoder writes the level as its number on the core scale.
func NumericLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendInt(int(FromZapLevel(l)))
}

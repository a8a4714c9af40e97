package slogstream

import (
	"log/slog"

	"github.com/philipp01105/multistream/core"
)

// LevelFatal is the slog level that maps to core.FatalLevel.
const LevelFatal = slog.LevelError + 4

// FromSlogLevel converts a slog.Level to a core.Level.
func FromSlogLevel(level slog.Level) core.Level {
	switch {
	case level >= LevelFatal:
		return core.FatalLevel
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	case level >= slog.LevelDebug:
		return core.DebugLevel
	default:
		return core.TraceLevel
	}
}

// ToSlogLevel converts a core.Level to the slog.Level of the same name.
func ToSlogLevel(level core.Level) slog.Level {
	switch {
	case level >= core.FatalLevel:
		return LevelFatal
	case level >= core.ErrorLevel:
		return slog.LevelError
	case level >= core.WarnLevel:
		return slog.LevelWarn
	case level >= core.InfoLevel:
		return slog.LevelInfo
	case level >= core.DebugLevel:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

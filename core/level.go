package core

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Level is a numeric severity. Lower values are more verbose.
type Level int

const (
	// TraceLevel for very fine-grained diagnostics
	TraceLevel Level = 10
	// DebugLevel for detailed debugging information
	DebugLevel Level = 20
	// InfoLevel for general informational messages (default)
	InfoLevel Level = 30
	// WarnLevel for warning messages
	WarnLevel Level = 40
	// ErrorLevel for error messages
	ErrorLevel Level = 50
	// FatalLevel for fatal messages (the logger exits the process)
	FatalLevel Level = 60
	// SilentLevel is larger than every real level. A destination at
	// SilentLevel never receives a record.
	SilentLevel Level = math.MaxInt
)

// ErrUnknownLevel is returned by ParseLevel for names outside the level set.
var ErrUnknownLevel = errors.New("unknown level")

// String returns the lower-case name of the level
func (l Level) String() string {
	if name, ok := l.name(); ok {
		return name
	}
	return "level(" + strconv.Itoa(int(l)) + ")"
}

func (l Level) name() (string, bool) {
	switch l {
	case TraceLevel:
		return "trace", true
	case DebugLevel:
		return "debug", true
	case InfoLevel:
		return "info", true
	case WarnLevel:
		return "warn", true
	case ErrorLevel:
		return "error", true
	case FatalLevel:
		return "fatal", true
	case SilentLevel:
		return "silent", true
	}
	return "", false
}

// AppendText appends the name of a named level, or the number of any
// other level, to b.
func (l Level) AppendText(b []byte) ([]byte, error) {
	if name, ok := l.name(); ok {
		return append(b, name...), nil
	}
	return strconv.AppendInt(b, int64(l), 10), nil
}

// MarshalText implements encoding.TextMarshaler; see AppendText.
func (l Level) MarshalText() ([]byte, error) {
	return l.AppendText(nil)
}

// UnmarshalText accepts what MarshalText produces: a level name as
// understood by ParseLevel, or a decimal number.
func (l *Level) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if n, err := strconv.Atoi(s); err == nil {
		*l = Level(n)
		return nil
	}
	v, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// ParseLevel converts a level name to a Level. Names are matched
// case-insensitively; "warning" is accepted as an alias of "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return TraceLevel, nil
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	case "fatal":
		return FatalLevel, nil
	case "silent":
		return SilentLevel, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// MustParseLevel is like ParseLevel but panics on an unknown name.
func MustParseLevel(s string) Level {
	l, err := ParseLevel(s)
	if err != nil {
		panic(err)
	}
	return l
}

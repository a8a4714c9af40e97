package multistream

import (
	"errors"
	"fmt"
	"io"

	"github.com/philipp01105/multistream/core"
)

var (
	// ErrNilSink is returned by Add when a spec carries no sink.
	ErrNilSink = errors.New("multistream: destination has no sink")
	// ErrInvalidSpec is returned by Add for a Spec type it does not know.
	ErrInvalidSpec = errors.New("multistream: invalid destination spec")
)

// Spec describes a destination to register with Add. It is implemented
// only by the variants in this package.
type Spec interface {
	isSpec()
}

// ByHandle registers a bare sink at InfoLevel.
type ByHandle struct {
	Sink io.Writer
}

// ByNumericLevel registers a sink at the raw numeric level LevelVal.
type ByNumericLevel struct {
	Sink     io.Writer
	LevelVal int
}

// BySymbolicLevel registers a sink at a named level such as "warn".
// Unknown names make Add fail with core.ErrUnknownLevel.
type BySymbolicLevel struct {
	Sink io.Writer
	Name string
}

// ByExplicitLevel registers a sink at a core.Level.
type ByExplicitLevel struct {
	Sink  io.Writer
	Level core.Level
}

// Default registers a sink with no level indicator; it is treated as
// InfoLevel.
type Default struct {
	Sink io.Writer
}

func (ByHandle) isSpec()        {}
func (ByNumericLevel) isSpec()  {}
func (BySymbolicLevel) isSpec() {}
func (ByExplicitLevel) isSpec() {}
func (Default) isSpec()         {}

// normalize resolves a Spec into an unsequenced entry. Specs are
// values, so the caller's spec is never modified.
func normalize(spec Spec) (entry, error) {
	var (
		sink  io.Writer
		level core.Level
	)

	switch s := spec.(type) {
	case ByHandle:
		sink, level = s.Sink, core.InfoLevel
	case ByNumericLevel:
		sink, level = s.Sink, core.Level(s.LevelVal)
	case BySymbolicLevel:
		l, err := core.ParseLevel(s.Name)
		if err != nil {
			return entry{}, err
		}
		sink, level = s.Sink, l
	case ByExplicitLevel:
		sink, level = s.Sink, s.Level
	case Default:
		sink, level = s.Sink, core.InfoLevel
	default:
		return entry{}, fmt.Errorf("%w: %T", ErrInvalidSpec, spec)
	}

	if sink == nil {
		return entry{}, ErrNilSink
	}
	return entry{sink: sink, level: level}, nil
}

package multistream

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"go.uber.org/multierr"

	"github.com/philipp01105/multistream/core"
)

// entry is a registered destination. seq only breaks ties between
// equal levels and is never exposed.
type entry struct {
	sink  io.Writer
	level core.Level
	seq   int
}

// Destination is the read-only view of a registered destination.
type Destination struct {
	Sink  io.Writer
	Level core.Level
}

// Dispatcher forwards each written record to every destination whose
// level is at or below the record's level.
type Dispatcher struct {
	entries  []entry
	seq      int
	minLevel core.Level
	hasMin   bool
	meta     Metadata
}

var (
	_ io.Writer    = (*Dispatcher)(nil)
	_ MetadataSink = (*Dispatcher)(nil)
)

// New creates a Dispatcher pre-seeded with specs, registered in order.
func New(specs ...Spec) (*Dispatcher, error) {
	d := &Dispatcher{meta: Metadata{Level: core.InfoLevel}}
	for i, spec := range specs {
		if _, err := d.Add(spec); err != nil {
			return nil, fmt.Errorf("destination %d: %w", i, err)
		}
	}
	return d, nil
}

// Add registers a destination and returns d for chaining. The
// destination list is sorted again before Add returns, so the next
// Write already sees it. On error d is left unchanged.
func (d *Dispatcher) Add(spec Spec) (*Dispatcher, error) {
	e, err := normalize(spec)
	if err != nil {
		return d, err
	}

	e.seq = d.seq
	d.seq++

	d.entries = append(d.entries, e)
	slices.SortFunc(d.entries, compareByLevel)

	d.minLevel = d.entries[0].level
	d.hasMin = true
	return d, nil
}

// SetMetadata sets the context used by the next Write: its Level
// decides which destinations receive the record.
func (d *Dispatcher) SetMetadata(m Metadata) {
	d.meta = m
}

// Write forwards p to every destination whose level is at or below the
// level of the current metadata, in ascending level order. A failing
// destination does not stop the others; all failures are returned
// together.
func (d *Dispatcher) Write(p []byte) (int, error) {
	level := d.meta.Level

	var errs error
	for i := range d.entries {
		e := &d.entries[i]
		// entries are sorted by level, nothing further can match;
		// silent destinations sort last and never receive
		if e.level > level || e.level == core.SilentLevel {
			break
		}

		if ms, ok := e.sink.(MetadataSink); ok {
			ms.SetMetadata(d.meta)
		}

		n, err := e.sink.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("destination %d (%s): %w", i, e.level, err))
		}
	}

	if errs != nil {
		return 0, errs
	}
	return len(p), nil
}

// WriteLevel sets m as the current metadata and writes p.
func (d *Dispatcher) WriteLevel(m Metadata, p []byte) (int, error) {
	d.SetMetadata(m)
	return d.Write(p)
}

// Clone returns a new Dispatcher sharing d's sinks, with every
// destination set to level. d is not modified.
func (d *Dispatcher) Clone(level core.Level) *Dispatcher {
	entries := make([]entry, len(d.entries))
	for i, e := range d.entries {
		entries[i] = entry{sink: e.sink, level: level, seq: i}
	}

	return &Dispatcher{
		entries:  entries,
		seq:      len(entries),
		minLevel: level,
		hasMin:   true,
		meta:     Metadata{Level: core.InfoLevel},
	}
}

// MinLevel returns the lowest destination level. ok is false when no
// destination has been added.
func (d *Dispatcher) MinLevel() (level core.Level, ok bool) {
	return d.minLevel, d.hasMin
}

// Enabled reports whether a record at level would reach at least one
// destination.
func (d *Dispatcher) Enabled(level core.Level) bool {
	return len(d.entries) > 0 && d.minLevel != core.SilentLevel && level >= d.minLevel
}

// Destinations returns a copy of the destinations in dispatch order.
func (d *Dispatcher) Destinations() []Destination {
	out := make([]Destination, len(d.entries))
	for i, e := range d.entries {
		out[i] = Destination{Sink: e.sink, Level: e.level}
	}
	return out
}

// Len returns the number of registered destinations.
func (d *Dispatcher) Len() int {
	return len(d.entries)
}

func compareByLevel(a, b entry) int {
	if c := cmp.Compare(a.level, b.level); c != 0 {
		return c
	}
	return cmp.Compare(a.seq, b.seq)
}

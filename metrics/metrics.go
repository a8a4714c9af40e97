// Package metrics provides Prometheus instrumentation for multistream
// destinations.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

// Collectors holds the counters shared by every wrapped destination.
type Collectors struct {
	records *prometheus.CounterVec
	bytes   *prometheus.CounterVec
	errors  *prometheus.CounterVec
}

// NewCollectors creates the counters and registers them with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	f := promauto.With(reg)
	return &Collectors{
		records: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multistream",
			Name:      "records_total",
			Help:      "Records forwarded to a destination",
		}, []string{"destination", "level"}),
		bytes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multistream",
			Name:      "bytes_total",
			Help:      "Bytes forwarded to a destination",
		}, []string{"destination"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "multistream",
			Name:      "write_errors_total",
			Help:      "Failed writes to a destination",
		}, []string{"destination"}),
	}
}

// Sink counts the records, bytes and failures of the destination it
// wraps. It is a MetadataSink: the level label comes from the metadata
// of each write, and the metadata is passed on when the wrapped
// destination wants it too.
type Sink struct {
	next  io.Writer
	meta  multistream.MetadataSink
	name  string
	c     *Collectors
	level core.Level
}

var _ multistream.MetadataSink = (*Sink)(nil)

// Wrap returns w instrumented under the destination label name.
func (c *Collectors) Wrap(name string, w io.Writer) *Sink {
	s := &Sink{next: w, name: name, c: c, level: core.InfoLevel}
	s.meta, _ = w.(multistream.MetadataSink)
	return s
}

// SetMetadata records the level of the next write.
func (s *Sink) SetMetadata(m multistream.Metadata) {
	s.level = m.Level
	if s.meta != nil {
		s.meta.SetMetadata(m)
	}
}

// Write forwards p to the wrapped destination.
func (s *Sink) Write(p []byte) (int, error) {
	n, err := s.next.Write(p)
	s.c.bytes.WithLabelValues(s.name).Add(float64(n))
	if err != nil {
		s.c.errors.WithLabelValues(s.name).Inc()
		return n, err
	}
	s.c.records.WithLabelValues(s.name, s.level.String()).Inc()
	return n, nil
}

// Sync flushes the wrapped destination when it supports it.
func (s *Sink) Sync() error {
	if f, ok := s.next.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

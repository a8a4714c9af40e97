package asyncsink

import (
	"io"
	"sync"
	"time"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

// Config holds configuration for an async sink
type Config struct {
	// Writer is the wrapped destination (required)
	Writer io.Writer
	// BufferSize is the size of the queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: DefaultLevelPolicy)
	OverflowPolicy map[core.Level]OverflowPolicy
	// BlockTimeout is the timeout for the Block policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close keeps writing queued records (default: 5s)
	DrainTimeout time.Duration
}

type record struct {
	meta multistream.Metadata
	data []byte
}

// Sink queues records and writes them to the wrapped destination from
// a background goroutine.
type Sink struct {
	w              io.Writer
	next           multistream.MetadataSink
	mu             sync.Mutex // guards w
	closeMu        sync.RWMutex
	queue          chan record
	closed         chan struct{}
	closeOnce      sync.Once
	wg             sync.WaitGroup
	overflowPolicy map[core.Level]OverflowPolicy
	blockTimeout   time.Duration
	drainTimeout   time.Duration
	stats          Stats
	meta           multistream.Metadata
}

var _ multistream.MetadataSink = (*Sink)(nil)

// New creates a Sink and starts its background writer.
func New(cfg Config) *Sink {
	if cfg.Writer == nil {
		cfg.Writer = io.Discard
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	if cfg.OverflowPolicy == nil {
		cfg.OverflowPolicy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	s := &Sink{
		w:              cfg.Writer,
		queue:          make(chan record, cfg.BufferSize),
		closed:         make(chan struct{}),
		overflowPolicy: cfg.OverflowPolicy,
		blockTimeout:   cfg.BlockTimeout,
		drainTimeout:   cfg.DrainTimeout,
		meta:           multistream.Metadata{Level: core.InfoLevel},
	}
	s.next, _ = cfg.Writer.(multistream.MetadataSink)

	s.wg.Add(1)
	go s.process()
	return s
}

// SetMetadata sets the metadata queued with the next Write.
func (s *Sink) SetMetadata(m multistream.Metadata) {
	s.meta = m
}

// Write queues a copy of p. It reports success when the record was
// queued, dropped by policy, or written synchronously.
func (s *Sink) Write(p []byte) (int, error) {
	rec := record{meta: s.meta, data: append([]byte(nil), p...)}

	// Close waits for in-flight enqueues, so anything queued here is
	// seen by the drain.
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	select {
	case <-s.closed:
		return s.write(rec)
	default:
	}

	policy, ok := s.overflowPolicy[rec.meta.Level]
	if !ok {
		policy = DropNewest
	}

	select {
	case s.queue <- rec:
		return len(p), nil
	default:
	}

	switch policy {
	case Block:
		t := time.NewTimer(s.blockTimeout)
		defer t.Stop()
		select {
		case s.queue <- rec:
			return len(p), nil
		case <-t.C:
			s.stats.IncrementBlocked()
			return s.write(rec)
		}

	case DropOldest:
		select {
		case old := <-s.queue:
			s.stats.IncrementDropped(old.meta.Level)
		default:
		}
		select {
		case s.queue <- rec:
		default:
			s.stats.IncrementDropped(rec.meta.Level)
		}
		return len(p), nil

	default:
		s.stats.IncrementDropped(rec.meta.Level)
		return len(p), nil
	}
}

func (s *Sink) write(rec record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.next != nil {
		s.next.SetMetadata(rec.meta)
	}
	n, err := s.w.Write(rec.data)
	if err != nil {
		s.stats.IncrementFailed()
		return n, err
	}
	s.stats.IncrementProcessed()
	return n, nil
}

func (s *Sink) process() {
	defer s.wg.Done()

	for {
		// once closed, only the drain deadline decides what is written
		select {
		case <-s.closed:
			s.drain()
			return
		default:
		}

		select {
		case rec := <-s.queue:
			// failures are counted in stats; keep draining
			s.write(rec)
		case <-s.closed:
			s.drain()
			return
		}
	}
}

// drain writes queued records until the queue is empty or the drain
// timeout passes. Records still queued after that count as dropped.
func (s *Sink) drain() {
	deadline := time.Now().Add(s.drainTimeout)
	for time.Now().Before(deadline) {
		select {
		case rec := <-s.queue:
			s.write(rec)
		default:
			return
		}
	}
	for {
		select {
		case rec := <-s.queue:
			s.stats.IncrementDropped(rec.meta.Level)
		default:
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (s *Sink) Stats() Snapshot {
	return s.stats.Snapshot()
}

// Close stops accepting queued writes and drains the queue within the
// drain timeout; records left after it are counted as dropped. The
// wrapped writer is left open; writes after Close go straight to it.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.closeMu.Lock()
		close(s.closed)
		s.closeMu.Unlock()
		s.wg.Wait()
	})
	return nil
}

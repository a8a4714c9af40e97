package asyncsink

import (
	"sync/atomic"

	"github.com/philipp01105/multistream/core"
)

// OverflowPolicy defines how to handle full async queues
type OverflowPolicy int

const (
	// DropNewest drops the newest record when the queue is full
	DropNewest OverflowPolicy = iota
	// DropOldest drops the oldest queued record when the queue is full
	DropOldest
	// Block waits for space and writes synchronously after a timeout
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "DropNewest"
	case DropOldest:
		return "DropOldest"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// DefaultLevelPolicy returns the default level-based overflow policies
func DefaultLevelPolicy() map[core.Level]OverflowPolicy {
	return map[core.Level]OverflowPolicy{
		core.TraceLevel: DropNewest,
		core.DebugLevel: DropNewest,
		core.InfoLevel:  DropNewest,
		core.WarnLevel:  DropNewest,
		core.ErrorLevel: Block,
		core.FatalLevel: Block,
	}
}

// trackedLevels are the levels with their own dropped counter. Records
// at any other level count under the nearest tracked level below.
var trackedLevels = [...]core.Level{
	core.TraceLevel,
	core.DebugLevel,
	core.InfoLevel,
	core.WarnLevel,
	core.ErrorLevel,
	core.FatalLevel,
}

// Stats tracks sink statistics
type Stats struct {
	dropped   [len(trackedLevels)]atomic.Uint64
	blocked   atomic.Uint64
	processed atomic.Uint64
	failed    atomic.Uint64
}

func slot(level core.Level) int {
	i := 0
	for j, l := range trackedLevels {
		if level >= l {
			i = j
		}
	}
	return i
}

// IncrementDropped increments the dropped counter for a level
func (s *Stats) IncrementDropped(level core.Level) {
	s.dropped[slot(level)].Add(1)
}

// IncrementBlocked increments the blocked counter
func (s *Stats) IncrementBlocked() {
	s.blocked.Add(1)
}

// IncrementProcessed increments the processed counter
func (s *Stats) IncrementProcessed() {
	s.processed.Add(1)
}

// IncrementFailed increments the failed write counter
func (s *Stats) IncrementFailed() {
	s.failed.Add(1)
}

// Snapshot is a point-in-time copy of Stats
type Snapshot struct {
	DroppedTotal   map[core.Level]uint64
	BlockedTotal   uint64
	ProcessedTotal uint64
	FailedTotal    uint64
}

// TotalDropped returns the dropped count across all levels
func (s Snapshot) TotalDropped() uint64 {
	var n uint64
	for _, v := range s.DroppedTotal {
		n += v
	}
	return n
}

// Snapshot returns a snapshot of current statistics
func (s *Stats) Snapshot() Snapshot {
	snap := Snapshot{
		DroppedTotal:   make(map[core.Level]uint64, len(trackedLevels)),
		BlockedTotal:   s.blocked.Load(),
		ProcessedTotal: s.processed.Load(),
		FailedTotal:    s.failed.Load(),
	}
	for i, l := range trackedLevels {
		snap.DroppedTotal[l] = s.dropped[i].Load()
	}
	return snap
}

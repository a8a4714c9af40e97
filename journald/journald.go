// Package journald is a multistream destination that sends records to
// the systemd journal.
//
// A Sink is a multistream.MetadataSink: the record level becomes the
// journal PRIORITY, the raw message becomes MESSAGE and structured
// fields become upper-cased journal fields. When a record carries no
// message the payload itself, minus its trailing newline, is sent.
package journald

import (
	"bytes"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"

	"github.com/philipp01105/multistream/core"
	"github.com/philipp01105/multistream/multistream"
)

// Config holds configuration for a journal Sink
type Config struct {
	// Identifier is sent as SYSLOG_IDENTIFIER (default: "multistream")
	Identifier string
}

// Sink writes records to the systemd journal.
type Sink struct {
	identifier string
	meta       multistream.Metadata
	send       func(message string, priority journal.Priority, vars map[string]string) error
}

var _ multistream.MetadataSink = (*Sink)(nil)

// New creates a new Sink
func New(cfg Config) *Sink {
	if cfg.Identifier == "" {
		cfg.Identifier = "multistream"
	}
	return &Sink{
		identifier: cfg.Identifier,
		meta:       multistream.Metadata{Level: core.InfoLevel},
		send:       journal.Send,
	}
}

// Available reports whether the journal socket can be reached.
func Available() bool {
	return journal.Enabled()
}

// SetMetadata sets the metadata used by the next Write.
func (s *Sink) SetMetadata(m multistream.Metadata) {
	s.meta = m
}

// Write sends one record to the journal.
func (s *Sink) Write(p []byte) (int, error) {
	msg := s.meta.Msg
	if msg == "" {
		msg = string(bytes.TrimRight(p, "\n"))
	}

	vars := make(map[string]string, len(s.meta.Fields)+1)
	for _, f := range s.meta.Fields {
		if key := fieldName(f.Key); key != "" {
			vars[key] = f.StringValue()
		}
	}
	vars["SYSLOG_IDENTIFIER"] = s.identifier

	if err := s.send(msg, Priority(s.meta.Level), vars); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Priority maps a level to a journal priority.
func Priority(level core.Level) journal.Priority {
	switch {
	case level >= core.FatalLevel:
		return journal.PriCrit
	case level >= core.ErrorLevel:
		return journal.PriErr
	case level >= core.WarnLevel:
		return journal.PriWarning
	case level >= core.InfoLevel:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}

// fieldName converts a field key to a journal field name: upper case
// letters, digits and underscores, not starting with an underscore or
// digit. It returns "" when nothing usable is left.
func fieldName(key string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, key)
	name = strings.TrimLeft(name, "_0123456789")
	switch name {
	case "", "MESSAGE", "PRIORITY", "SYSLOG_IDENTIFIER":
		return ""
	}
	return name
}

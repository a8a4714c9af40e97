package multistream

import (
	"io"

	"github.com/philipp01105/multistream/core"
)

// Metadata is the out-of-band context of a record: the level it was
// emitted at, the raw message, the structured fields of the call and
// the logger that produced it.
type Metadata struct {
	Level  core.Level
	Msg    string
	Fields []core.Field
	Logger any
}

// MetadataSink is a sink that wants the metadata of every record it
// receives. SetMetadata is called immediately before each Write.
type MetadataSink interface {
	io.Writer
	SetMetadata(m Metadata)
}

// MetadataRecorder keeps the last metadata it was given. Embed it in a
// sink type that has a Write method to make that type a MetadataSink.
type MetadataRecorder struct {
	last Metadata
}

// SetMetadata records m.
func (r *MetadataRecorder) SetMetadata(m Metadata) {
	r.last = m
}

// LastLevel returns the level of the last recorded metadata.
func (r *MetadataRecorder) LastLevel() core.Level { return r.last.Level }

// LastMsg returns the raw message of the last recorded metadata.
func (r *MetadataRecorder) LastMsg() string { return r.last.Msg }

// LastFields returns the fields of the last recorded metadata.
func (r *MetadataRecorder) LastFields() []core.Field { return r.last.Fields }

// LastLogger returns the originating logger of the last recorded metadata.
func (r *MetadataRecorder) LastLogger() any { return r.last.Logger }

// Last returns the last recorded metadata.
func (r *MetadataRecorder) Last() Metadata { return r.last }

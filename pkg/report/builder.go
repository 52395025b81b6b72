// Package report builds the human-readable status reports: a backup-file
// report decoded from checkpoint files, and a queue report computed from
// the active work queue.
package report

import (
	"fmt"
	"strings"
)

// SafetyMargin is how many bytes the queue report keeps free before
// switching to its truncation marker, so a final sentence always fits.
const SafetyMargin = 200

// Builder accumulates report text into a buffer bounded at a fixed byte
// capacity.  Appends are whole-line only: anything that does not fit
// completely is dropped and the builder marked truncated.
type Builder struct {
	buf       strings.Builder
	max       int
	truncated bool
}

// NewBuilder returns a Builder bounded at maxBytes.
func NewBuilder(maxBytes int) *Builder {
	return &Builder{max: maxBytes}
}

// Append appends raw text if it fits whole, and reports whether it did.
func (b *Builder) Append(s string) bool {
	if b.buf.Len()+len(s) > b.max {
		b.truncated = true

		return false
	}
	b.buf.WriteString(s)

	return true
}

// Line formats and appends one newline-terminated line if it fits whole,
// and reports whether it did.
func (b *Builder) Line(format string, args ...interface{}) bool {
	return b.Append(fmt.Sprintf(format, args...) + "\n")
}

// NearFull reports whether fewer than SafetyMargin bytes remain.
func (b *Builder) NearFull() bool {
	return b.buf.Len() >= b.max-SafetyMargin
}

// Truncated reports whether any append was dropped for lack of room.
func (b *Builder) Truncated() bool {
	return b.truncated
}

// Len returns the number of bytes accumulated so far.
func (b *Builder) Len() int {
	return b.buf.Len()
}

// String returns the accumulated report text.
func (b *Builder) String() string {
	return b.buf.String()
}

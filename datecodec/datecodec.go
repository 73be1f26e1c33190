// Package datecodec parses and renders the fixed-width SVN dump timestamp
// and provides the monotone-advance rule the writer uses between revisions.
package datecodec

import (
	"fmt"
	"time"
)

// Stamp is a (seconds since epoch, microseconds) pair. See spec §3.
type Stamp struct {
	Sec  int64
	Usec int64 // in [0, 999999]
}

// Layout is the canonical 27-byte form: YYYY-MM-DDTHH:MM:SS.uuuuuuZ
const Layout = "2006-01-02T15:04:05.000000Z"
const canonicalLen = 27

// Zero is the (0,0) stamp returned on any parse failure.
var Zero = Stamp{}

// Parse decodes a canonical timestamp string. Any length or layout mismatch
// yields (0,0) rather than an error, per spec §3 ("parses to (0,0)").
func Parse(s string) Stamp {
	if len(s) != canonicalLen {
		return Zero
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Zero
	}
	return Stamp{Sec: t.Unix(), Usec: int64(t.Nanosecond() / 1000)}
}

// Render encodes a Stamp back to its canonical 27-byte string.
func Render(s Stamp) string {
	t := time.Unix(s.Sec, s.Usec*1000).UTC()
	return t.Format(Layout)
}

// String renders s using Render.
func (s Stamp) String() string { return Render(s) }

// Less reports whether s sorts strictly before other, lexicographically on
// the canonical string form, which agrees with chronological order (spec §4.G).
func (s Stamp) Less(other Stamp) bool {
	if s.Sec != other.Sec {
		return s.Sec < other.Sec
	}
	return s.Usec < other.Usec
}

// Equal reports whether s and other denote the same instant.
func (s Stamp) Equal(other Stamp) bool {
	return s.Sec == other.Sec && s.Usec == other.Usec
}

// AdvanceIfNotMonotone returns cand unchanged if it is strictly greater than
// prev; otherwise it returns prev advanced by one microsecond, carrying into
// seconds at 10^6 (spec §3, §4.E "Monotone date enforcement").
func AdvanceIfNotMonotone(prev, cand Stamp) Stamp {
	if prev.Less(cand) {
		return cand
	}
	usec := prev.Usec + 1
	sec := prev.Sec
	if usec >= 1_000_000 {
		usec -= 1_000_000
		sec++
	}
	return Stamp{Sec: sec, Usec: usec}
}

// Validate reports a descriptive error if s did not come from well-formed
// input (Usec out of range). Parse itself never returns such a value since
// it always derives Usec from a valid time.Time, but callers constructing a
// Stamp directly (e.g. from test fixtures) can use this as a sanity check.
func Validate(s Stamp) error {
	if s.Usec < 0 || s.Usec > 999999 {
		return fmt.Errorf("datecodec: usec %d out of range [0, 999999]", s.Usec)
	}
	return nil
}

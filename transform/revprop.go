// Package transform implements the pipeline stages spec §4.F describes:
// each one satisfies dump.Transform and is driven, one revision at a time,
// by dump.CopyAll's generic reader-to-writer copy loop.
package transform

import (
	"regexp"

	"github.com/grazhopper/svndumptool/dump"
)

// RevPropRegexReplace rewrites a single named revision property by regular
// expression, substituting Replacement (which may reference capture groups
// with $1-style backreferences) wherever Pattern matches (spec §4.F).
type RevPropRegexReplace struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply implements dump.Transform.
func (t *RevPropRegexReplace) Apply(r *dump.Reader) error {
	val, ok := r.Props().Get(t.Name)
	if !ok {
		return nil
	}
	r.Props().Set(t.Name, t.Pattern.ReplaceAllString(val, t.Replacement))
	return nil
}

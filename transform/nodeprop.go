package transform

import (
	"regexp"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
)

// NodePropRegexReplace rewrites a single named node property, by regular
// expression, across every add/replace/change node in the revision that
// carries it (spec §4.F). Pattern is applied as given; the transform-prop
// subcommand compiles it in multiline mode.
type NodePropRegexReplace struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply implements dump.Transform.
func (t *NodePropRegexReplace) Apply(r *dump.Reader) error {
	for _, n := range r.Nodes() {
		if n.Action == node.Delete || n.Props == nil {
			continue
		}
		val, ok := n.Props.Get(t.Name)
		if !ok {
			continue
		}
		n.Props.Set(t.Name, t.Pattern.ReplaceAllString(val, t.Replacement))
	}
	return nil
}

package transform

import (
	"github.com/grazhopper/svndumptool/autoprops"
	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
)

// AutoProps applies an auto-props config (spec §6) to every add node, and
// optionally to change nodes that already carry some properties (spec
// §4.F: "for every add (and optionally change carrying properties)").
type AutoProps struct {
	Config        *autoprops.Config
	IncludeChange bool
}

// Apply implements dump.Transform.
func (t *AutoProps) Apply(r *dump.Reader) error {
	for _, n := range r.Nodes() {
		switch n.Action {
		case node.Add:
		case node.Change:
			if !t.IncludeChange || n.Props == nil {
				continue
			}
		default:
			continue
		}
		for _, p := range t.Config.Match(n.Path) {
			if err := n.SetProperty(p.Name, p.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

package transform

import (
	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
)

// CVS2SVNFix repairs nodes whose Node-kind was omitted by the producer
// (spec §3 "Missing kind", §4.F "cvs2svn fix-up") by remembering, across
// revisions, the last known kind at every live path and consulting it —
// falling back to the copy-from source's history when the node's own path
// has none yet.
type CVS2SVNFix struct {
	history map[string]node.Kind
}

// NewCVS2SVNFix returns a fresh fix-up transform with empty history.
func NewCVS2SVNFix() *CVS2SVNFix {
	return &CVS2SVNFix{history: make(map[string]node.Kind)}
}

// Apply implements dump.Transform.
func (t *CVS2SVNFix) Apply(r *dump.Reader) error {
	for _, n := range r.Nodes() {
		if n.Action == node.Delete {
			delete(t.history, n.Path)
			continue
		}
		if n.Kind == node.KindNone {
			kind, ok := t.history[n.Path]
			if !ok && n.CopyFrom != nil {
				kind, ok = t.history[n.CopyFrom.Path]
			}
			if ok {
				n.Kind = kind
			}
		}
		if n.Kind != node.KindNone {
			t.history[n.Path] = n.Kind
		}
	}
	return nil
}

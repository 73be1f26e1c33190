package transform

import (
	"os"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
)

// Edit is one content replacement and/or property deletion targeted at a
// single (revision, path) pair (spec §4.F).
type Edit struct {
	Rev         int
	Path        string
	Content     []byte // nil leaves the node's text untouched
	DeleteProps []string
}

// ContentPropertyEdit applies a fixed list of (revision, path) edits as the
// reader walks past each targeted revision.
type ContentPropertyEdit struct {
	Edits  []Edit
	TmpDir string
}

// Apply implements dump.Transform.
func (t *ContentPropertyEdit) Apply(r *dump.Reader) error {
	for _, e := range t.Edits {
		if e.Rev != r.Rev() {
			continue
		}
		for _, n := range r.GetNodesByPath(e.Path, "") {
			if n.Action == node.Delete {
				continue
			}
			if e.Content != nil {
				tmp, err := os.CreateTemp(t.TmpDir, "svndumptool-edit-*")
				if err != nil {
					return dumperr.Wrap(dumperr.IO, "transform.ContentPropertyEdit.Apply", err)
				}
				if _, err := tmp.Write(e.Content); err != nil {
					tmp.Close()
					os.Remove(tmp.Name())
					return dumperr.Wrap(dumperr.IO, "transform.ContentPropertyEdit.Apply", err)
				}
				if err := tmp.Close(); err != nil {
					return dumperr.Wrap(dumperr.IO, "transform.ContentPropertyEdit.Apply", err)
				}
				if err := n.SetTextFromFile(tmp.Name(), -1, "", true); err != nil {
					return err
				}
			}
			if n.Props == nil {
				continue
			}
			for _, name := range e.DeleteProps {
				if n.Action == node.Change {
					n.Props.Tombstone(name)
				} else {
					n.Props.Delete(name)
				}
			}
		}
	}
	return nil
}

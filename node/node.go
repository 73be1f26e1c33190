// Package node models one add/change/delete/replace operation within a
// revision (spec §3, §4.C) in Node, its text-reference variants in
// TextRef/Handle (textref.go), and the directory-shadow tree used by the
// ls subcommand in PathTree (pathtree.go, adapted from the teacher's
// directory-contents tree — see DESIGN.md).
package node

import (
	"strings"

	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/propset"
)

// CopyFrom names a historical (path, revision) source for an add/replace.
type CopyFrom struct {
	Path string
	Rev  int
}

// Node is one operation on one repository path within a revision.
type Node struct {
	Path     string
	Action   Action
	Kind     Kind
	CopyFrom *CopyFrom
	Props    *propset.Set
	Text     *TextRef
}

// New validates action/kind compatibility and strips any leading slash from
// path (spec §4.C, §3 invariant 3).
func New(path string, action Action, kind Kind) (*Node, error) {
	if path == "" {
		return nil, dumperr.New(dumperr.InvalidArgument, "node.New")
	}
	path = strings.TrimPrefix(path, "/")
	if action == Delete && kind != KindNone {
		return nil, dumperr.New(dumperr.InvalidArgument, "node.New")
	}
	if kind != KindNone && kind != File && kind != Dir {
		return nil, dumperr.New(dumperr.InvalidArgument, "node.New")
	}
	return &Node{Path: path, Action: action, Kind: kind}, nil
}

// SetCopyFrom records the node's copy-from source. Legal only on add or
// replace (spec §3 invariant, §4.C).
func (n *Node) SetCopyFrom(path string, rev int) error {
	if n.Action != Add && n.Action != Replace {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetCopyFrom")
	}
	if rev < 0 {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetCopyFrom")
	}
	n.CopyFrom = &CopyFrom{Path: strings.TrimPrefix(path, "/"), Rev: rev}
	return nil
}

// SetProperty sets a single property. Forbidden on delete nodes.
func (n *Node) SetProperty(name, value string) error {
	if n.Action == Delete {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetProperty")
	}
	if n.Props == nil {
		n.Props = propset.New()
	}
	n.Props.Set(name, value)
	return nil
}

// SetProperties replaces the node's whole property set. Forbidden on delete nodes.
func (n *Node) SetProperties(p *propset.Set) error {
	if n.Action == Delete {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetProperties")
	}
	n.Props = p
	return nil
}

// SetTextFromReader assigns text from a byte range in an open reader,
// trusting the caller-supplied MD5 (spec §4.C variant 1).
func (n *Node) SetTextFromReader(opener RangeOpener, offset, length int64, md5 string) error {
	if n.Action == Delete {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetTextFromReader")
	}
	t, err := NewRangeTextRef(opener, offset, length, md5)
	if err != nil {
		return err
	}
	n.Text = t
	return nil
}

// SetTextFromFile assigns text from an external file. Pass length<0 or
// md5=="" to have them computed from the file (spec §4.C variant 2).
func (n *Node) SetTextFromFile(path string, length int64, md5 string, deleteOnDrop bool) error {
	if n.Action == Delete {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetTextFromFile")
	}
	t, err := NewFileTextRef(path, length, md5, deleteOnDrop)
	if err != nil {
		return err
	}
	n.Text = t
	return nil
}

// SetTextFromNode borrows another node's text reference, replicating
// whichever source variant it carries (spec §4.C variant 3).
func (n *Node) SetTextFromNode(other *Node) error {
	if n.Action == Delete {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.SetTextFromNode")
	}
	if other.Text == nil {
		n.Text = nil
		return nil
	}
	ref := *other.Text
	n.Text = &ref
	return nil
}

// HasText reports whether this node carries a text reference (spec §3:
// "present iff textLen >= 0").
func (n *Node) HasText() bool { return n.Text != nil }

// Clone returns a shallow copy of n; CopyFrom is deep-copied, Props/Text
// are shared (callers that mutate either should clone those explicitly).
func (n *Node) Clone() *Node {
	c := *n
	if n.CopyFrom != nil {
		cf := *n.CopyFrom
		c.CopyFrom = &cf
	}
	return &c
}

// Validate re-checks the whole-node invariants from spec §3 (used by the
// check tool, and as a last line of defense before serialization).
func (n *Node) Validate() error {
	if n.Action == Delete {
		if n.Kind != KindNone || n.CopyFrom != nil || n.Props != nil || n.Text != nil {
			return dumperr.New(dumperr.InvalidArgument, "node.Node.Validate")
		}
	}
	if n.CopyFrom != nil && n.Action != Add && n.Action != Replace {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.Validate")
	}
	if n.Path == "" {
		return dumperr.New(dumperr.InvalidArgument, "node.Node.Validate")
	}
	return nil
}

// IndexKey returns the (action-letter, path) key used by the per-revision
// node index (spec §3).
func (n *Node) IndexKey() (byte, string) {
	return n.Action.Letter(), n.Path
}

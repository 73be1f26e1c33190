package merge

import (
	"fmt"
	"strings"

	"github.com/emicklei/dot"
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
	"github.com/grazhopper/svndumptool/propset"
)

type input struct {
	spec     InputSpec
	reader   *dump.Reader
	revMap   map[int]int
	live     bool
	suppress map[string]bool
	gNode    dot.Node
	hasNode  bool
}

// Engine runs one merge Plan to completion (spec §4.G).
type Engine struct {
	log    *logrus.Logger
	plan   *Plan
	inputs []*input

	// Graph, if non-nil, is populated with one node per input revision copied
	// into the output (labelled with the input path and its source revision
	// number) and a "next" edge between consecutive copied revisions of the
	// same input, mirroring the teacher's cmd/gitgraph commit-relationship
	// graph (opt-in via --graph). The synthetic extra-dirs revision and
	// copy-from relationships are not drawn.
	Graph *dot.Graph
}

// NewEngine prepares an Engine for plan; inputs are opened lazily by Run.
func NewEngine(log *logrus.Logger, plan *Plan) *Engine {
	return &Engine{log: log, plan: plan}
}

// Run executes the plan once, writing the merged result to outPath.
func (e *Engine) Run(outPath string) error {
	if err := e.openInputs(); err != nil {
		return err
	}
	if len(e.inputs) == 0 {
		return dumperr.New(dumperr.InvalidArgument, "merge.Engine.Run: no live inputs")
	}

	w, err := e.createWriter(outPath)
	if err != nil {
		return err
	}

	// step 3: advance every input still sitting on its rev 0.
	for _, in := range e.inputs {
		if in.live && in.reader.Rev() == 0 {
			e.advance(in)
		}
	}

	if len(e.plan.ExtraDirs) > 0 {
		if err := e.writeExtraDirs(w); err != nil {
			return err
		}
	}

	for e.anyLive() {
		in := e.pickOldest()
		if err := e.copyRevision(in, w); err != nil {
			return err
		}
		e.advance(in)
	}

	return w.Close()
}

func (e *Engine) openInputs() error {
	for _, spec := range e.plan.Inputs {
		r, err := dump.Open(e.log, spec.Path)
		if err != nil {
			return err
		}
		ok, err := r.ReadNextRev()
		if err != nil {
			r.Close()
			return err
		}
		if !ok {
			r.Close() // empty input, dropped before any work (spec §4.G)
			continue
		}
		suppress := make(map[string]bool, len(spec.SuppressMkdir))
		for _, p := range spec.SuppressMkdir {
			suppress[p] = true
		}
		e.inputs = append(e.inputs, &input{spec: spec, reader: r, revMap: make(map[int]int), live: true, suppress: suppress})
	}
	return nil
}

func (e *Engine) createWriter(outPath string) (*dump.Writer, error) {
	uuid := e.inputs[0].reader.UUID()
	if e.plan.StartRev > 0 {
		return dump.CreateWithRevN(e.log, outPath, uuid, e.plan.StartRev)
	}
	return dump.CreateWithRev0(e.log, outPath, uuid, e.inputs[0].reader.DateString())
}

func (e *Engine) anyLive() bool {
	for _, in := range e.inputs {
		if in.live {
			return true
		}
	}
	return false
}

// pickOldest returns the live input whose current revision has the
// smallest svn:date string; ties favor the lower input index (spec §4.G
// "tie-breaks": "deterministic but implementation-visible; tests must pin it").
func (e *Engine) pickOldest() *input {
	var best *input
	for _, in := range e.inputs {
		if !in.live {
			continue
		}
		if best == nil || in.reader.DateString() < best.reader.DateString() {
			best = in
		}
	}
	return best
}

func (e *Engine) advance(in *input) {
	ok, err := in.reader.ReadNextRev()
	if err != nil || !ok {
		in.reader.Close()
		in.live = false
	}
}

func (e *Engine) copyRevision(in *input, w *dump.Writer) error {
	if err := w.AddRev(in.reader.Props()); err != nil {
		return err
	}
	writtenRev := w.Rev()
	in.revMap[in.reader.Rev()] = writtenRev

	for _, n := range in.reader.Nodes() {
		rewritten, err := e.rewrite(in, n)
		if err != nil {
			return err
		}
		if rewritten == nil {
			continue
		}
		if err := w.AddNode(rewritten); err != nil {
			return err
		}
	}

	if e.Graph != nil {
		gn := e.Graph.Node(fmt.Sprintf("%s r%d", in.spec.Path, in.reader.Rev()))
		if in.hasNode {
			e.Graph.Edge(in.gNode, gn, "next")
		}
		in.gNode = gn
		in.hasNode = true
	}
	return nil
}

// rewrite applies the per-node rewrite rules of spec §4.G, returning nil to
// signal the node should be dropped.
func (e *Engine) rewrite(in *input, n *node.Node) (*node.Node, error) {
	if n.Action == node.Add && n.Kind == node.Dir && in.suppress[n.Path] {
		return nil, nil
	}

	newPath := applyRename(in.spec.Renames, n.Path)

	var newCopyFromPath string
	var newCopyFromRev int
	copyFromChanged := false
	if n.CopyFrom != nil {
		newCopyFromPath = applyRename(in.spec.Renames, n.CopyFrom.Path)
		mapped, ok := in.revMap[n.CopyFrom.Rev]
		if !ok {
			return nil, dumperr.New(dumperr.MissingMapping, "merge.Engine.rewrite: copy-from targets a dropped revision")
		}
		newCopyFromRev = mapped
		copyFromChanged = newCopyFromPath != n.CopyFrom.Path || newCopyFromRev != n.CopyFrom.Rev
	}

	if newPath == n.Path && !copyFromChanged {
		return n, nil // reuse verbatim, preserving its borrowed text reference
	}

	clone := n.Clone()
	clone.Path = newPath
	if clone.CopyFrom != nil {
		clone.CopyFrom.Path = newCopyFromPath
		clone.CopyFrom.Rev = newCopyFromRev
	}
	return clone, nil
}

// applyRename returns the first rename whose From prefix matches path,
// first-match-wins, or path unchanged if none match (spec §4.G).
func applyRename(renames []Rename, path string) string {
	for _, rn := range renames {
		from := strings.TrimSuffix(rn.From, "/")
		to := strings.TrimSuffix(rn.To, "/")
		if path == from {
			return to
		}
		if strings.HasPrefix(path, from+"/") {
			return to + "/" + strings.TrimPrefix(path, from+"/")
		}
	}
	return path
}

func (e *Engine) writeExtraDirs(w *dump.Writer) error {
	props := propset.New()
	props.Set("svn:date", e.minCurrentDate())
	if e.plan.ExtraDirsAuthor != "" {
		props.Set("svn:author", e.plan.ExtraDirsAuthor)
	}
	props.Set("svn:log", e.plan.ExtraDirsMessage)
	if err := w.AddRev(props); err != nil {
		return err
	}
	for _, p := range e.plan.ExtraDirs {
		n, err := node.New(p, node.Add, node.Dir)
		if err != nil {
			return err
		}
		if err := w.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) minCurrentDate() string {
	var min string
	for _, in := range e.inputs {
		if !in.live {
			continue
		}
		d := in.reader.DateString()
		if min == "" || d < min {
			min = d
		}
	}
	return min
}

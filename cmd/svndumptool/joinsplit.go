package main

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
)

// runJoin concatenates srcPaths sequentially, in argument order - a
// degenerate merge with one live input at a time instead of merge.Engine's
// date-ordered interleave (SPEC_FULL.md §C). Each input keeps its own
// source-rev -> written-rev map so its internal copy-from references still
// resolve after renumbering.
func runJoin(log *logrus.Logger, srcPaths []string, outPath string) error {
	if len(srcPaths) == 0 {
		return dumperr.New(dumperr.InvalidArgument, "join: no inputs")
	}

	first, err := dump.Open(log, srcPaths[0])
	if err != nil {
		return err
	}
	if ok, err := first.ReadNextRev(); err != nil || !ok {
		first.Close()
		if err != nil {
			return err
		}
		return dumperr.New(dumperr.BadFormat, "join: empty first input")
	}
	w, err := dump.CreateWithRev0(log, outPath, first.UUID(), first.DateString())
	if err != nil {
		first.Close()
		return err
	}

	for i, path := range srcPaths {
		r := first
		if i > 0 {
			r, err = dump.Open(log, path)
			if err != nil {
				return err
			}
			if ok, err := r.ReadNextRev(); err != nil || !ok {
				r.Close()
				if err != nil {
					return err
				}
				continue // empty input, skipped
			}
		}
		revMap := make(map[int]int)
		for {
			ok, err := r.ReadNextRev()
			if err != nil {
				r.Close()
				return err
			}
			if !ok {
				break
			}
			if err := w.AddRev(r.Props()); err != nil {
				r.Close()
				return err
			}
			revMap[r.Rev()] = w.Rev()
			for _, n := range r.Nodes() {
				out := n
				if n.CopyFrom != nil {
					mapped, ok := revMap[n.CopyFrom.Rev]
					if !ok {
						r.Close()
						return dumperr.New(dumperr.MissingMapping, "join: copy-from targets a revision outside this input")
					}
					if mapped != n.CopyFrom.Rev {
						out = n.Clone()
						out.CopyFrom.Rev = mapped
					}
				}
				if err := w.AddNode(out); err != nil {
					r.Close()
					return err
				}
			}
		}
		r.Close()
	}

	return w.Close()
}

// runSplit partitions src's nodes by path prefix into the given outputs,
// specified as "prefix=outfile" pairs; a node whose path matches more than
// one prefix goes to the first match, mirroring merge's first-match-wins
// rename list used here as a selector instead (SPEC_FULL.md §C).
func runSplit(log *logrus.Logger, src string, prefixSpecs []string) error {
	type target struct {
		prefix string
		w      *dump.Writer
		revMap map[int]int
	}

	r, err := dump.Open(log, src)
	if err != nil {
		return err
	}
	defer r.Close()
	if ok, err := r.ReadNextRev(); err != nil || !ok {
		if err != nil {
			return err
		}
		return dumperr.New(dumperr.BadFormat, "split: empty input")
	}

	var targets []*target
	for _, spec := range prefixSpecs {
		parts := strings.SplitN(spec, "=", 2)
		if len(parts) != 2 {
			return dumperr.New(dumperr.InvalidArgument, "split: malformed prefix=outfile pair: "+spec)
		}
		w, err := dump.CreateWithRev0(log, parts[1], r.UUID(), r.DateString())
		if err != nil {
			return err
		}
		targets = append(targets, &target{prefix: parts[0], w: w, revMap: make(map[int]int)})
	}

	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		byTarget := make(map[*target][]*node.Node)
		for _, n := range r.Nodes() {
			for _, t := range targets {
				if strings.HasPrefix(n.Path, t.prefix) {
					byTarget[t] = append(byTarget[t], n)
					break
				}
			}
		}
		for _, t := range targets {
			nodes, ok := byTarget[t]
			if !ok {
				continue // nothing for this output this revision
			}
			if err := t.w.AddRev(r.Props().Clone()); err != nil {
				return err
			}
			t.revMap[r.Rev()] = t.w.Rev()
			for _, n := range nodes {
				out := n
				if n.CopyFrom != nil {
					mapped, ok := t.revMap[n.CopyFrom.Rev]
					if !ok {
						return dumperr.New(dumperr.MissingMapping, "split: copy-from targets a revision this output dropped")
					}
					if mapped != n.CopyFrom.Rev {
						out = n.Clone()
						out.CopyFrom.Rev = mapped
					}
				}
				if err := t.w.AddNode(out); err != nil {
					return err
				}
			}
		}
	}

	for _, t := range targets {
		if err := t.w.Close(); err != nil {
			return err
		}
	}
	return nil
}

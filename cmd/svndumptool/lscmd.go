package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/node"
)

// replayTree walks r from its current position through revisions up to (and
// including) stopRev, or to EOF if atHead, folding add/delete/replace nodes
// into a PathTree that mirrors the repository layout at that point.
func replayTree(r *dump.Reader, stopRev int, atHead bool) (*node.PathTree, error) {
	tree := node.NewPathTree("")
	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return nil, err
		}
		if !ok {
			return tree, nil
		}
		for _, n := range r.Nodes() {
			switch n.Action {
			case node.Delete:
				tree.DeleteFile(n.Path)
			case node.Add, node.Replace:
				if n.Kind == node.Dir {
					tree.AddDir(n.Path)
				} else {
					tree.AddFile(n.Path)
				}
			}
		}
		if !atHead && r.Rev() >= stopRev {
			return tree, nil
		}
	}
}

func runLs(log *logrus.Logger, src, pathAtRev string) error {
	path, rev, atHead, err := parsePathAtRev(pathAtRev)
	if err != nil {
		return err
	}
	r, err := dump.Open(log, src)
	if err != nil {
		return err
	}
	defer r.Close()

	tree, err := replayTree(r, rev, atHead)
	if err != nil {
		return err
	}
	if tree.FindFile(path) {
		fmt.Println(path)
		return nil
	}
	for _, f := range tree.GetFiles(path) {
		fmt.Println(f)
	}
	return nil
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
)

// findTextAtRev replays r looking for the last node at path that carried a
// text reference at or before stopRev (or EOF, if atHead); a delete along
// the way resets the search, since the path no longer exists past that point.
func findTextAtRev(r *dump.Reader, path string, stopRev int, atHead bool) (*node.Node, error) {
	var latest *node.Node
	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		for _, n := range r.Nodes() {
			if n.Path != path {
				continue
			}
			if n.Action == node.Delete {
				latest = nil
				continue
			}
			if n.HasText() {
				latest = n
			}
		}
		if !atHead && r.Rev() >= stopRev {
			break
		}
	}
	if latest == nil {
		return nil, dumperr.New(dumperr.InvalidArgument, "export: no content found for "+path)
	}
	return latest, nil
}

func runExport(log *logrus.Logger, src, pathAtRev, dst string) error {
	path, rev, atHead, err := parsePathAtRev(pathAtRev)
	if err != nil {
		return err
	}
	r, err := dump.Open(log, src)
	if err != nil {
		return err
	}
	defer r.Close()

	n, err := findTextAtRev(r, path, rev, atHead)
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return dumperr.Wrap(dumperr.IO, "export", err)
	}
	defer out.Close()
	_, err = n.Text.WriteTo(out)
	return err
}

package transform

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/h2non/filetype"

	"github.com/grazhopper/svndumptool/datecodec"
	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
)

// ContentMode selects how Sanitizer rewrites a file's body.
type ContentMode int

const (
	ContentNone ContentMode = iota
	ContentWholeFile
	ContentPerLine
)

// Sanitizer replaces log messages, author names, path components, and
// optionally file content with salted MD5 fingerprints (spec §4.F). Unlike
// the source's module-level globals, it carries its own configuration and
// author-alias table so a fresh Sanitizer gives deterministic, independent
// output (REDESIGN FLAGS: "re-architect as a sanitizer object carrying its
// configuration and an authors-interned list").
type Sanitizer struct {
	Salt        string
	ContentMode ContentMode
	TmpDir      string

	authorIDs    map[string]int
	nextAuthorID int
}

// NewSanitizer returns a ready-to-use Sanitizer.
func NewSanitizer(salt string, mode ContentMode, tmpDir string) *Sanitizer {
	return &Sanitizer{
		Salt:         salt,
		ContentMode:  mode,
		TmpDir:       tmpDir,
		authorIDs:    make(map[string]int),
		nextAuthorID: 1,
	}
}

func (s *Sanitizer) fingerprint(input string) string {
	return datecodec.SumBytes([]byte(s.Salt + input))
}

// authorAlias returns a stable per-author integer alias: the same input
// author always maps to the same alias within one Sanitizer's lifetime.
func (s *Sanitizer) authorAlias(author string) string {
	id, ok := s.authorIDs[author]
	if !ok {
		id = s.nextAuthorID
		s.authorIDs[author] = id
		s.nextAuthorID++
	}
	return fmt.Sprintf("user%d", id)
}

func (s *Sanitizer) sanitizePath(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = s.fingerprint(p)
	}
	return strings.Join(parts, "/")
}

// Apply implements dump.Transform.
func (s *Sanitizer) Apply(r *dump.Reader) error {
	if author, ok := r.Props().Get("svn:author"); ok {
		r.Props().Set("svn:author", s.authorAlias(author))
	}
	if log, ok := r.Props().Get("svn:log"); ok {
		r.Props().Set("svn:log", s.fingerprint(log))
	}
	for _, n := range r.Nodes() {
		n.Path = s.sanitizePath(n.Path)
		if n.CopyFrom != nil {
			n.CopyFrom.Path = s.sanitizePath(n.CopyFrom.Path)
		}
		if n.Action == node.Delete || !n.HasText() || s.ContentMode == ContentNone {
			continue
		}
		if err := s.sanitizeContent(n); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sanitizer) sanitizeContent(n *node.Node) error {
	var buf bytes.Buffer
	if _, err := n.Text.WriteTo(&buf); err != nil {
		return err
	}
	data := buf.Bytes()

	head := data
	if len(head) > 261 {
		head = head[:261]
	}
	if filetype.IsImage(head) || filetype.IsVideo(head) || filetype.IsArchive(head) || filetype.IsAudio(head) {
		return nil // binary payload: leave untouched rather than fingerprint it as text
	}

	var out bytes.Buffer
	switch s.ContentMode {
	case ContentWholeFile:
		out.WriteString(s.fingerprint(string(data)))
		out.WriteByte('\n')
	case ContentPerLine:
		lines := bytes.Split(data, []byte("\n"))
		if len(lines) > 0 && len(lines[len(lines)-1]) == 0 {
			lines = lines[:len(lines)-1] // trailing newline produces no extra line
		}
		for _, line := range lines {
			out.WriteString(s.fingerprint(string(line)))
			out.WriteByte('\n')
		}
	}

	tmp, err := os.CreateTemp(s.TmpDir, "svndumptool-sanitize-*")
	if err != nil {
		return dumperr.Wrap(dumperr.IO, "transform.Sanitizer.Apply", err)
	}
	if _, err := tmp.Write(out.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return dumperr.Wrap(dumperr.IO, "transform.Sanitizer.Apply", err)
	}
	if err := tmp.Close(); err != nil {
		return dumperr.Wrap(dumperr.IO, "transform.Sanitizer.Apply", err)
	}
	return n.SetTextFromFile(tmp.Name(), -1, "", true)
}

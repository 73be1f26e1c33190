// Package dump implements the streaming reader and writer for the
// Subversion dump-file format (spec §4.D, §4.E): open a dump, walk it
// revision by revision, and regenerate it byte-faithfully after in-memory
// transformation, without ever materializing a node's full text body.
package dump

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/datecodec"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
	"github.com/grazhopper/svndumptool/propset"
)

const formatVersionLine = "SVN-fs-dump-format-version: 2"

type readerState int

const (
	readerInitial readerState = iota
	readerReady
	readerEOF
)

// Revision is one (number, property set, ordered node list) tuple (spec §3).
type Revision struct {
	Number int
	Props  *propset.Set
	Nodes  []*node.Node
}

// Reader walks a dump file revision by revision. It implements
// node.RangeOpener so its nodes' text references can be reopened
// independently of the reader's own read cursor.
type Reader struct {
	log   *logrus.Logger
	path  string
	f     *os.File
	sc    *lineScanner
	state readerState
	uuid  string
	cur   *Revision

	pendingLine string
	havePending bool
}

// Open reads the format-version header, optional UUID record, and leaves
// the reader positioned for the first ReadNextRev call (spec §4.D "open").
func Open(log *logrus.Logger, path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.IO, "dump.Open", err)
	}
	r := &Reader{log: log, path: path, f: f, sc: newLineScanner(f), state: readerInitial}
	if err := r.readFileHeader(); err != nil {
		f.Close()
		return nil, err
	}
	r.state = readerReady
	return r, nil
}

func (r *Reader) readFileHeader() error {
	line, err := r.sc.readLine()
	if err != nil {
		return dumperr.Wrap(dumperr.Truncated, "dump.Reader.Open", err)
	}
	if line != formatVersionLine {
		return dumperr.AtLine(dumperr.BadFormat, "dump.Reader.Open", r.sc.line, nil)
	}
	blank, err := r.sc.readLine()
	if err != nil {
		return dumperr.Wrap(dumperr.Truncated, "dump.Reader.Open", err)
	}
	if blank != "" {
		return dumperr.AtLine(dumperr.BadFormat, "dump.Reader.Open", r.sc.line, nil)
	}
	line2, err := r.sc.readLine()
	if err != nil {
		if err == io.EOF {
			return dumperr.New(dumperr.Truncated, "dump.Reader.Open")
		}
		return dumperr.Wrap(dumperr.IO, "dump.Reader.Open", err)
	}
	if strings.HasPrefix(line2, "UUID:") {
		r.uuid = strings.TrimSpace(strings.TrimPrefix(line2, "UUID:"))
		blank2, err := r.sc.readLine()
		if err != nil {
			return dumperr.Wrap(dumperr.Truncated, "dump.Reader.Open", err)
		}
		if blank2 != "" {
			return dumperr.AtLine(dumperr.BadFormat, "dump.Reader.Open", r.sc.line, nil)
		}
		return nil
	}
	r.pendingLine = line2
	r.havePending = true
	return nil
}

// nextNonBlankLine returns the next non-empty line, or io.EOF if the file
// ends before one is found.
func (r *Reader) nextNonBlankLine() (string, error) {
	for {
		line, err := r.sc.readLine()
		if err != nil {
			return "", err
		}
		if line != "" {
			return line, nil
		}
	}
}

// readHeaderBlock collects "Name: value" lines starting with firstLine
// until (and consuming) the blank line that terminates the header block.
func (r *Reader) readHeaderBlock(firstLine string) (map[string]string, error) {
	headers := map[string]string{}
	line := firstLine
	for {
		parts := strings.SplitN(line, ": ", 2)
		if len(parts) != 2 {
			return nil, dumperr.AtLine(dumperr.BadFormat, "dump.Reader: malformed header line", r.sc.line, nil)
		}
		headers[parts[0]] = parts[1]
		next, err := r.sc.readLine()
		if err != nil {
			return nil, dumperr.Wrap(dumperr.Truncated, "dump.Reader: header block", err)
		}
		if next == "" {
			return headers, nil
		}
		line = next
	}
}

func (r *Reader) readTrailingBlank() error {
	line, err := r.sc.readLine()
	if err != nil {
		return dumperr.Wrap(dumperr.Truncated, "dump.Reader: trailing blank line", err)
	}
	if line != "" {
		return dumperr.AtLine(dumperr.BadFormat, "dump.Reader: expected blank line", r.sc.line, nil)
	}
	return nil
}

func (r *Reader) readPropsIfPresent(headers map[string]string) (*propset.Set, error) {
	lenStr, ok := headers["Prop-content-length"]
	if !ok {
		return nil, nil
	}
	n, err := strconv.ParseInt(lenStr, 10, 64)
	if err != nil || n < 0 {
		return nil, dumperr.New(dumperr.BadFormat, "dump.Reader: malformed Prop-content-length")
	}
	raw, err := r.sc.readRaw(n)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.Truncated, "dump.Reader: property block", err)
	}
	return parsePropertyBlock(raw)
}

// ReadNextRev positions at the next revision, returning true if one was
// found. Once EOF is reached it transitions to a terminal state and every
// later call returns (false, nil) (spec §4.D).
func (r *Reader) ReadNextRev() (bool, error) {
	if r.state == readerEOF {
		return false, nil
	}
	var firstLine string
	if r.havePending {
		firstLine = r.pendingLine
		r.havePending = false
	} else {
		line, err := r.nextNonBlankLine()
		if err != nil {
			if err == io.EOF {
				r.state = readerEOF
				return false, nil
			}
			return false, dumperr.Wrap(dumperr.IO, "dump.Reader.ReadNextRev", err)
		}
		firstLine = line
	}
	if !strings.HasPrefix(firstLine, "Revision-number:") {
		return false, dumperr.AtLine(dumperr.BadFormat, "dump.Reader.ReadNextRev: expected Revision-number", r.sc.line, nil)
	}
	headers, err := r.readHeaderBlock(firstLine)
	if err != nil {
		return false, err
	}
	revNr, err := parseHeaderInt(headers, "Revision-number")
	if err != nil {
		return false, err
	}
	props, err := r.readPropsIfPresent(headers)
	if err != nil {
		return false, err
	}
	if err := r.readTrailingBlank(); err != nil {
		return false, err
	}
	if props == nil {
		props = propset.New()
	}

	rev := &Revision{Number: revNr, Props: props}

	for {
		line, err := r.nextNonBlankLine()
		if err != nil {
			if err == io.EOF {
				break
			}
			return false, dumperr.Wrap(dumperr.IO, "dump.Reader.ReadNextRev", err)
		}
		if strings.HasPrefix(line, "Revision-number:") {
			r.pendingLine = line
			r.havePending = true
			break
		}
		if !strings.HasPrefix(line, "Node-path:") {
			return false, dumperr.AtLine(dumperr.BadFormat, "dump.Reader.ReadNextRev: expected Node-path", r.sc.line, nil)
		}
		n, err := r.readNodeRecord(line)
		if err != nil {
			return false, err
		}
		rev.Nodes = append(rev.Nodes, n)
	}

	r.cur = rev
	r.state = readerReady
	return true, nil
}

// readNodeRecord parses one node record; firstLine is its already-consumed
// "Node-path:" header line.
func (r *Reader) readNodeRecord(firstLine string) (*node.Node, error) {
	headers, err := r.readHeaderBlock(firstLine)
	if err != nil {
		return nil, err
	}
	path, ok := headers["Node-path"]
	if !ok {
		return nil, dumperr.AtLine(dumperr.BadFormat, "dump.Reader: missing Node-path", r.sc.line, nil)
	}
	action, err := node.ParseAction(headers["Node-action"])
	if err != nil {
		return nil, dumperr.Wrap(dumperr.BadFormat, "dump.Reader", err)
	}
	kind, err := node.ParseKind(headers["Node-kind"])
	if err != nil {
		return nil, dumperr.Wrap(dumperr.BadFormat, "dump.Reader", err)
	}
	n, err := node.New(path, action, kind)
	if err != nil {
		return nil, err
	}
	if cfRevStr, ok := headers["Node-copyfrom-rev"]; ok {
		cfRev, err := strconv.Atoi(cfRevStr)
		if err != nil || cfRev < 0 {
			return nil, dumperr.New(dumperr.BadFormat, "dump.Reader: malformed Node-copyfrom-rev")
		}
		if err := n.SetCopyFrom(headers["Node-copyfrom-path"], cfRev); err != nil {
			return nil, err
		}
	}
	if action == node.Delete {
		return n, nil
	}
	props, err := r.readPropsIfPresent(headers)
	if err != nil {
		return nil, err
	}
	if props != nil {
		if err := n.SetProperties(props); err != nil {
			return nil, err
		}
	}
	if textLenStr, ok := headers["Text-content-length"]; ok {
		textLen, err := strconv.ParseInt(textLenStr, 10, 64)
		if err != nil || textLen < 0 {
			return nil, dumperr.New(dumperr.BadFormat, "dump.Reader: malformed Text-content-length")
		}
		offset := r.sc.offset()
		if err := r.sc.skip(textLen); err != nil {
			return nil, dumperr.Wrap(dumperr.Truncated, "dump.Reader: text block", err)
		}
		nl, err := r.sc.readByte()
		if err != nil {
			return nil, dumperr.Wrap(dumperr.Truncated, "dump.Reader: text block", err)
		}
		if nl != '\n' {
			return nil, dumperr.AtLine(dumperr.BadFormat, "dump.Reader: text block missing trailing newline", r.sc.line, nil)
		}
		if err := n.SetTextFromReader(r, offset, textLen, headers["Text-content-md5"]); err != nil {
			return nil, err
		}
	}
	if err := r.readTrailingBlank(); err != nil {
		return nil, err
	}
	return n, nil
}

// OpenRange implements node.RangeOpener by opening an independent file
// handle onto this dump and seeking to offset, so a node's text reference
// can be streamed without disturbing the reader's own cursor (spec §3
// invariant 4, §5 "shared resources").
func (r *Reader) OpenRange(offset, length int64) (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.IO, "dump.Reader.OpenRange", err)
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, dumperr.Wrap(dumperr.IO, "dump.Reader.OpenRange", err)
	}
	return &rangeHandle{f: f, lim: io.LimitReader(f, length)}, nil
}

type rangeHandle struct {
	f   *os.File
	lim io.Reader
}

func (h *rangeHandle) Read(p []byte) (int, error) { return h.lim.Read(p) }
func (h *rangeHandle) Close() error                { return h.f.Close() }

// UUID returns the repository UUID declared at the top of the dump, or ""
// if none was present.
func (r *Reader) UUID() string { return r.uuid }

// Rev returns the current revision number.
func (r *Reader) Rev() int { return r.cur.Number }

// DateString returns the raw svn:date property value.
func (r *Reader) DateString() string {
	v, _ := r.Prop("svn:date")
	return v
}

// Date returns the current revision's date as a parsed timestamp.
func (r *Reader) Date() datecodec.Stamp {
	return datecodec.Parse(r.DateString())
}

// Log returns the current revision's svn:log property.
func (r *Reader) Log() string {
	v, _ := r.Prop("svn:log")
	return v
}

// Author returns the current revision's svn:author property.
func (r *Reader) Author() string {
	v, _ := r.Prop("svn:author")
	return v
}

// Prop returns an arbitrary revision property.
func (r *Reader) Prop(name string) (string, bool) { return r.cur.Props.Get(name) }

// Props returns the current revision's full property set.
func (r *Reader) Props() *propset.Set { return r.cur.Props }

// NodeCount returns the number of nodes in the current revision.
func (r *Reader) NodeCount() int { return len(r.cur.Nodes) }

// Node returns the i'th node of the current revision.
func (r *Reader) Node(i int) *node.Node { return r.cur.Nodes[i] }

// Nodes returns every node of the current revision, in file order.
func (r *Reader) Nodes() []*node.Node { return r.cur.Nodes }

// GetNodesByPath returns the current revision's nodes at path whose action
// letter appears in actions (empty actions matches every action).
func (r *Reader) GetNodesByPath(path, actions string) []*node.Node {
	var out []*node.Node
	for _, n := range r.cur.Nodes {
		if n.Path != path {
			continue
		}
		if actions != "" && !strings.ContainsRune(actions, rune(n.Action.Letter())) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Index returns the current revision's node index, keyed by (action letter,
// path) as spec §3 describes, for tools (like diff) that align nodes by
// identity across two dumps.
func (r *Reader) Index() map[string]*node.Node {
	idx := make(map[string]*node.Node, len(r.cur.Nodes))
	for _, n := range r.cur.Nodes {
		letter, path := n.IndexKey()
		idx[string(letter)+path] = n
	}
	return idx
}

// Close releases the reader's file handle.
func (r *Reader) Close() error {
	return r.f.Close()
}

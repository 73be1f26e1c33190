package node

import (
	"fmt"
	"io"
	"os"

	"github.com/grazhopper/svndumptool/datecodec"
	"github.com/grazhopper/svndumptool/dumperr"
)

// RangeOpener opens an independent read handle over a byte range of some
// underlying file. A *dump.Reader implements this so range-style text
// references can be re-opened on demand without keeping the reader's own
// file handle alive (spec §9's preferred "per-revision snapshot" design:
// clone offset+length+md5, open an independent handle on demand).
type RangeOpener interface {
	OpenRange(offset, length int64) (io.ReadCloser, error)
}

type sourceKind int

const (
	sourceRange sourceKind = iota
	sourceFile
)

// TextRef describes a node's text body without holding its bytes: length,
// MD5, and one of the source variants from spec §3/§4.C. Assigning a
// TextRef from one Node to another (SetTextFromNode) copies this struct,
// which is the "borrowed from another node" variant — it replicates
// whichever underlying source the original carries.
type TextRef struct {
	Length int64
	MD5    string

	kind         sourceKind
	opener       RangeOpener // sourceRange
	offset       int64       // sourceRange
	path         string      // sourceFile
	deleteOnDrop bool        // sourceFile
}

// NewRangeTextRef builds a text reference into a byte range of an open
// reader, trusting the caller-supplied MD5 (spec §4.C variant 1: "with
// length and caller-provided MD5 (trusted)"). The MD5 is never recomputed
// here: doing so would require reading the whole range immediately, which
// would defeat the "no payload materialized until streamed on demand"
// invariant spec §1 calls the shared invariant across the engine.
func NewRangeTextRef(opener RangeOpener, offset, length int64, md5 string) (*TextRef, error) {
	if length < 0 {
		return nil, dumperr.New(dumperr.InvalidArgument, "node.NewRangeTextRef")
	}
	if !datecodec.ValidMD5(md5) {
		return nil, dumperr.Wrap(dumperr.InvalidArgument, "node.NewRangeTextRef",
			fmt.Errorf("md5 %q is not 32 lowercase hex characters", md5))
	}
	return &TextRef{Length: length, MD5: md5, kind: sourceRange, opener: opener, offset: offset}, nil
}

// NewFileTextRef builds a text reference into an external file. If length
// is negative or md5 is not a valid 32-hex digest, both are computed by
// reading the file once (spec §4.C: "Assigning text recomputes MD5 when the
// caller did not supply a 32-hex-char value").
func NewFileTextRef(path string, length int64, md5 string, deleteOnDrop bool) (*TextRef, error) {
	needLength := length < 0
	needMD5 := !datecodec.ValidMD5(md5)
	if needLength || needMD5 {
		f, err := os.Open(path)
		if err != nil {
			return nil, dumperr.Wrap(dumperr.IO, "node.NewFileTextRef", err)
		}
		defer f.Close()
		d := datecodec.NewDigester()
		n, err := io.Copy(d, f)
		if err != nil {
			return nil, dumperr.Wrap(dumperr.IO, "node.NewFileTextRef", err)
		}
		length = n
		md5 = d.Sum()
	}
	return &TextRef{Length: length, MD5: md5, kind: sourceFile, path: path, deleteOnDrop: deleteOnDrop}, nil
}

// Path returns the backing filesystem path for a file-sourced TextRef, or
// "" for a range-sourced one.
func (t *TextRef) Path() string {
	if t.kind == sourceFile {
		return t.path
	}
	return ""
}

// DeleteOnDrop reports whether a file-sourced TextRef owns (and should
// remove) its backing file once no longer needed.
func (t *TextRef) DeleteOnDrop() bool {
	return t.kind == sourceFile && t.deleteOnDrop
}

// Remove deletes the backing file of a file-sourced TextRef that owns it.
// It is a no-op for range-sourced references or ones that don't own their file.
func (t *TextRef) Remove() error {
	if t.kind == sourceFile && t.deleteOnDrop {
		return os.Remove(t.path)
	}
	return nil
}

// Handle is an open read cursor over a TextRef's bytes.
type Handle struct {
	ref *TextRef
	rc  io.ReadCloser
	lim io.Reader // bounded view over rc, for the range variant
}

// Open begins a streaming read of t's bytes (spec §4.C: "open() returns a handle").
func (t *TextRef) Open() (*Handle, error) {
	rc, err := t.openSource()
	if err != nil {
		return nil, err
	}
	return &Handle{ref: t, rc: rc, lim: io.LimitReader(rc, t.Length)}, nil
}

func (t *TextRef) openSource() (io.ReadCloser, error) {
	switch t.kind {
	case sourceRange:
		rc, err := t.opener.OpenRange(t.offset, t.Length)
		if err != nil {
			return nil, dumperr.Wrap(dumperr.IO, "node.TextRef.Open", err)
		}
		return rc, nil
	case sourceFile:
		f, err := os.Open(t.path)
		if err != nil {
			return nil, dumperr.Wrap(dumperr.IO, "node.TextRef.Open", err)
		}
		return f, nil
	default:
		return nil, dumperr.New(dumperr.InvalidState, "node.TextRef.Open")
	}
}

// Read returns up to count bytes, or an empty slice and io.EOF once the
// declared length has been exhausted (spec §9: "pick the empty-value
// convention — it composes with the standard read-loop idiom").
func (h *Handle) Read(count int) ([]byte, error) {
	buf := make([]byte, count)
	n, err := h.lim.Read(buf)
	if n == 0 && err == nil {
		err = io.EOF
	}
	return buf[:n], err
}

// Reopen rewinds the handle to the start of the text.
func (h *Handle) Reopen() error {
	if err := h.rc.Close(); err != nil {
		return dumperr.Wrap(dumperr.IO, "node.Handle.Reopen", err)
	}
	rc, err := h.ref.openSource()
	if err != nil {
		return err
	}
	h.rc = rc
	h.lim = io.LimitReader(rc, h.ref.Length)
	return nil
}

// Close releases the handle's underlying file descriptor.
func (h *Handle) Close() error {
	return h.rc.Close()
}

// WriteTo streams the text body to w, returning the number of bytes copied.
// Used by the writer to emit the declared-length text block (spec §4.E).
func (t *TextRef) WriteTo(w io.Writer) (int64, error) {
	h, err := t.Open()
	if err != nil {
		return 0, err
	}
	defer h.Close()
	n, err := io.Copy(w, h.lim)
	if err != nil {
		return n, dumperr.Wrap(dumperr.IO, "node.TextRef.WriteTo", err)
	}
	return n, nil
}

package dump

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/datecodec"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/node"
	"github.com/grazhopper/svndumptool/propset"
)

type writerState int

const (
	writerCreating writerState = iota
	writerWriting
)

// RevisionSource is whatever AddRevFromDump can copy a revision out of — a
// *Reader in the common case, or the merge engine's rewritten view of one.
type RevisionSource interface {
	Props() *propset.Set
	Nodes() []*node.Node
}

// Writer serializes a revision/node object model back into the dump-file
// format, enforcing strictly monotone revision dates (spec §4.E).
type Writer struct {
	log   *logrus.Logger
	f     *os.File
	state writerState

	nextRev      int
	lastDate     datecodec.Stamp
	haveLastDate bool
}

func writeFileHeader(f *os.File, uuid string) error {
	if _, err := f.WriteString(formatVersionLine + "\n\n"); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer", err)
	}
	if uuid != "" {
		if _, err := fmt.Fprintf(f, "UUID: %s\n\n", uuid); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer", err)
		}
	}
	return nil
}

// CreateWithRev0 writes the format header, optional UUID record, and a
// revision-0 record carrying only svn:date (spec §4.E).
func CreateWithRev0(log *logrus.Logger, path, uuid, rev0Date string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.IO, "dump.CreateWithRev0", err)
	}
	if err := writeFileHeader(f, uuid); err != nil {
		f.Close()
		return nil, err
	}
	w := &Writer{log: log, f: f, state: writerCreating}
	props := propset.New()
	props.Set("svn:date", rev0Date)
	if err := w.writeRevisionRecord(0, props); err != nil {
		f.Close()
		return nil, err
	}
	w.lastDate = datecodec.Parse(rev0Date)
	w.haveLastDate = true
	w.nextRev = 1
	w.state = writerWriting
	return w, nil
}

// CreateWithRevN writes the format header and optional UUID record only;
// the next AddRev call emits firstRevNr, which must be >= 1 (spec §4.E).
func CreateWithRevN(log *logrus.Logger, path, uuid string, firstRevNr int) (*Writer, error) {
	if firstRevNr < 1 {
		return nil, dumperr.New(dumperr.InvalidArgument, "dump.CreateWithRevN")
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, dumperr.Wrap(dumperr.IO, "dump.CreateWithRevN", err)
	}
	if err := writeFileHeader(f, uuid); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{log: log, f: f, state: writerCreating, nextRev: firstRevNr}, nil
}

// CreateLike dispatches to CreateWithRev0 or CreateWithRevN based on
// whether r's current revision is 0, advancing r past rev 0 in that case
// (spec §4.E).
func CreateLike(log *logrus.Logger, path string, r *Reader) (*Writer, error) {
	if r.Rev() == 0 {
		w, err := CreateWithRev0(log, path, r.UUID(), r.DateString())
		if err != nil {
			return nil, err
		}
		if _, err := r.ReadNextRev(); err != nil {
			return nil, err
		}
		return w, nil
	}
	return CreateWithRevN(log, path, r.UUID(), r.Rev())
}

// writeRevisionRecord renders props and emits the revision record header,
// property block, and trailing blank line, without number bookkeeping or
// monotone adjustment (those are AddRev's job).
func (w *Writer) writeRevisionRecord(number int, props *propset.Set) error {
	raw := renderPropertyBlock(props)
	plen := len(raw)
	if _, err := fmt.Fprintf(w.f, "Revision-number: %d\nProp-content-length: %d\nContent-length: %d\n\n", number, plen, plen); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddRev", err)
	}
	if _, err := w.f.Write(raw); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddRev", err)
	}
	if _, err := w.f.WriteString("\n"); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddRev", err)
	}
	return nil
}

// AddRev renders props, passing svn:date through the monotone-advance step
// against the prior written revision's date, and emits the revision record
// (spec §4.E, §3 "Revision timeline invariant").
func (w *Writer) AddRev(props *propset.Set) error {
	dateStr, _ := props.Get("svn:date")
	cand := datecodec.Parse(dateStr)
	final := cand
	if w.haveLastDate {
		final = datecodec.AdvanceIfNotMonotone(w.lastDate, cand)
	}
	props.Set("svn:date", datecodec.Render(final))
	w.lastDate = final
	w.haveLastDate = true

	number := w.nextRev
	if err := w.writeRevisionRecord(number, props); err != nil {
		return err
	}
	w.nextRev++
	w.state = writerWriting
	return nil
}

// AddNode emits one node record: headers, copy-from if set, property block
// if any, text block if any, and the trailing blank line (spec §4.E "Node
// serialization rules").
func (w *Writer) AddNode(n *node.Node) error {
	if w.state != writerWriting {
		return dumperr.New(dumperr.InvalidState, "dump.Writer.AddNode")
	}
	if _, err := fmt.Fprintf(w.f, "Node-path: %s\n", n.Path); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
	}
	if n.Kind != node.KindNone {
		if _, err := fmt.Fprintf(w.f, "Node-kind: %s\n", n.Kind.String()); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if _, err := fmt.Fprintf(w.f, "Node-action: %s\n", n.Action.String()); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
	}
	if n.Action == node.Delete {
		_, err := w.f.WriteString("\n")
		if err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
		return nil
	}
	if n.CopyFrom != nil {
		if _, err := fmt.Fprintf(w.f, "Node-copyfrom-rev: %d\nNode-copyfrom-path: %s\n", n.CopyFrom.Rev, n.CopyFrom.Path); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}

	hasProps := n.Props != nil
	hasText := n.HasText()
	var propRaw []byte
	var textLen int64
	if hasProps {
		propRaw = renderPropertyBlock(n.Props)
		if _, err := fmt.Fprintf(w.f, "Prop-content-length: %d\n", len(propRaw)); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if hasText {
		textLen = n.Text.Length
		if _, err := fmt.Fprintf(w.f, "Text-content-length: %d\nText-content-md5: %s\n", textLen, n.Text.MD5); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if hasProps || hasText {
		if _, err := fmt.Fprintf(w.f, "Content-length: %d\n", int64(len(propRaw))+textLen); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if _, err := w.f.WriteString("\n"); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
	}
	if hasProps {
		if _, err := w.f.Write(propRaw); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if hasText {
		if _, err := n.Text.WriteTo(w.f); err != nil {
			return err
		}
		if _, err := w.f.WriteString("\n"); err != nil {
			return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
		}
	}
	if _, err := w.f.WriteString("\n"); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.AddNode", err)
	}
	return nil
}

// AddRevFromDump copies src's revision properties and every node in order
// (spec §4.E), the generic building block the copy loop (§4.F) is built on.
func (w *Writer) AddRevFromDump(src RevisionSource) error {
	if err := w.AddRev(src.Props()); err != nil {
		return err
	}
	for _, n := range src.Nodes() {
		if err := w.AddNode(n); err != nil {
			return err
		}
	}
	return nil
}

// Rev returns the most recently written revision number, for callers (like
// the merge engine) that need to record source-rev -> written-rev mappings.
func (w *Writer) Rev() int { return w.nextRev - 1 }

// Close flushes and releases the writer's file handle.
func (w *Writer) Close() error {
	if err := w.f.Close(); err != nil {
		return dumperr.Wrap(dumperr.IO, "dump.Writer.Close", err)
	}
	return nil
}

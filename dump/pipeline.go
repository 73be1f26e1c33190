package dump

// Transform mutates the reader's current revision in place between
// ReadNextRev and the next writer action: revision properties, node
// properties, node paths, copy-from targets, or node text (spec §4.F).
type Transform interface {
	Apply(r *Reader) error
}

// CopyAll drives the generic reader-to-writer copy loop spec §4.F
// describes: "while reader.read_next_rev(): transform(reader);
// writer.add_rev_from_dump(reader)". t may be nil for a plain copy.
func CopyAll(r *Reader, w *Writer, t Transform) error {
	for {
		ok, err := r.ReadNextRev()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if t != nil {
			if err := t.Apply(r); err != nil {
				return err
			}
		}
		if err := w.AddRevFromDump(r); err != nil {
			return err
		}
	}
}

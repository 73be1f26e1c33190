package main

import (
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/transform"
)

// openAndCreateLike opens src, reads its rev0, and opens dst with a matching
// header - the common first step of every copy-and-transform subcommand.
func openAndCreateLike(log *logrus.Logger, src, dst string) (*dump.Reader, *dump.Writer, error) {
	r, err := dump.Open(log, src)
	if err != nil {
		return nil, nil, err
	}
	if _, err := r.ReadNextRev(); err != nil {
		r.Close()
		return nil, nil, err
	}
	w, err := dump.CreateWithRev0(log, dst, r.UUID(), r.DateString())
	if err != nil {
		r.Close()
		return nil, nil, err
	}
	return r, w, nil
}

func runCopy(log *logrus.Logger, src, dst string) error {
	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := dump.CopyAll(r, w, transform.Pipeline{}); err != nil {
		return err
	}
	return w.Close()
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/transform"
)

func parseContentMode(s string) (transform.ContentMode, error) {
	switch s {
	case "none":
		return transform.ContentNone, nil
	case "whole-file":
		return transform.ContentWholeFile, nil
	case "per-line":
		return transform.ContentPerLine, nil
	default:
		return transform.ContentNone, dumperr.New(dumperr.InvalidArgument, "sanitize: unknown content mode "+s)
	}
}

func runSanitize(log *logrus.Logger, src, dst, salt, mode, tmpDir string) error {
	cm, err := parseContentMode(mode)
	if err != nil {
		return err
	}
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	s := transform.NewSanitizer(salt, cm, tmpDir)
	if err := dump.CopyAll(r, w, s); err != nil {
		return err
	}
	return w.Close()
}

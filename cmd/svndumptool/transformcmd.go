package main

import (
	"regexp"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/transform"
)

func runTransformRevProp(log *logrus.Logger, src, dst, name, pattern, replacement string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	t := &transform.RevPropRegexReplace{Name: name, Pattern: re, Replacement: replacement}
	if err := dump.CopyAll(r, w, t); err != nil {
		return err
	}
	return w.Close()
}

func runTransformProp(log *logrus.Logger, src, dst, name, pattern, replacement string) error {
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return err
	}
	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	t := &transform.NodePropRegexReplace{Name: name, Pattern: re, Replacement: replacement}
	if err := dump.CopyAll(r, w, t); err != nil {
		return err
	}
	return w.Close()
}

func runCVS2SVNFix(log *logrus.Logger, src, dst string) error {
	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := dump.CopyAll(r, w, transform.NewCVS2SVNFix()); err != nil {
		return err
	}
	return w.Close()
}

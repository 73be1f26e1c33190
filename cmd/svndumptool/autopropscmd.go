package main

import (
	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/autoprops"
	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/transform"
)

func runApplyAutoProps(log *logrus.Logger, src, dst, configPath string, includeChange bool) error {
	cfg, err := autoprops.LoadFile(configPath)
	if err != nil {
		return err
	}

	r, w, err := openAndCreateLike(log, src, dst)
	if err != nil {
		return err
	}
	defer r.Close()

	t := &transform.AutoProps{Config: cfg, IncludeChange: includeChange}
	if err := dump.CopyAll(r, w, t); err != nil {
		return err
	}
	return w.Close()
}

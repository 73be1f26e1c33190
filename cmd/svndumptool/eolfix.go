package main

import (
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/grazhopper/svndumptool/dump"
	"github.com/grazhopper/svndumptool/dumperr"
	"github.com/grazhopper/svndumptool/transform"
)

type eolfixOptions struct {
	src, dst, mode, style, tmpDir, warnFile string
	selectors, overrides                    []string
}

// anySelector matches if any of its regexes match, satisfying
// transform.PathMatcher for the -r/--regex flag's repeatable selectors.
type anySelector []*regexp.Regexp

func (a anySelector) MatchString(path string) bool {
	for _, re := range a {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func parseEOLMode(s string) (transform.EOLMode, error) {
	switch s {
	case "CRLF":
		return transform.CRLFToLF, nil
	case "CR":
		return transform.CRToLF, nil
	case "RemCR":
		return transform.RemCR, nil
	default:
		return transform.CRLFToLF, dumperr.New(dumperr.InvalidArgument, "eolfix: unknown mode "+s)
	}
}

// parseEOLModes parses a comma-separated option set ("CRLF,CR"), applied in
// the given order (spec.md S5: CRLF collapses pairs first, then the
// surviving lone CRs become LF too).
func parseEOLModes(s string) ([]transform.EOLMode, error) {
	parts := strings.Split(s, ",")
	modes := make([]transform.EOLMode, 0, len(parts))
	for _, p := range parts {
		m, err := parseEOLMode(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		modes = append(modes, m)
	}
	return modes, nil
}

// parseEOLOverrides parses repeatable "rev:path:opts" specs into the
// per-(revision,path) override map consumed by transform.EOLNormalize.
func parseEOLOverrides(specs []string) (map[transform.OverrideKey][]transform.EOLMode, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	out := make(map[transform.OverrideKey][]transform.EOLMode, len(specs))
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) != 3 {
			return nil, dumperr.New(dumperr.InvalidArgument, "eolfix: -F wants rev:path:opts")
		}
		rev, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, dumperr.Wrap(dumperr.InvalidArgument, "eolfix: -F revision", err)
		}
		modes, err := parseEOLModes(parts[2])
		if err != nil {
			return nil, err
		}
		out[transform.OverrideKey{Rev: rev, Path: parts[1]}] = modes
	}
	return out, nil
}

func runEolfix(log *logrus.Logger, opts eolfixOptions) error {
	modes, err := parseEOLModes(opts.mode)
	if err != nil {
		return err
	}
	overrides, err := parseEOLOverrides(opts.overrides)
	if err != nil {
		return err
	}
	var sel transform.PathMatcher
	if len(opts.selectors) > 0 {
		var compiled anySelector
		for _, s := range opts.selectors {
			re, err := regexp.Compile(s)
			if err != nil {
				return err
			}
			compiled = append(compiled, re)
		}
		sel = compiled
	}
	tmpDir := opts.tmpDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	var warn io.Writer
	if opts.warnFile != "" {
		f, err := os.Create(opts.warnFile)
		if err != nil {
			return dumperr.Wrap(dumperr.IO, "eolfix: opening warnfile", err)
		}
		defer f.Close()
		warn = f
	}

	r, w, err := openAndCreateLike(log, opts.src, opts.dst)
	if err != nil {
		return err
	}
	defer r.Close()

	t := &transform.EOLNormalize{
		Modes: modes, Overrides: overrides, Style: opts.style,
		Selector: sel, TmpDir: tmpDir, Warn: warn,
	}
	if err := dump.CopyAll(r, w, t); err != nil {
		return err
	}
	return w.Close()
}

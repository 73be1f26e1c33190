package main

import (
	"os"

	"github.com/grazhopper/svndumptool/dumperr"
)

// Exit codes (spec.md §6, SPEC_FULL.md §C): 0 success, 1 user error or a
// detected diff/integrity failure, 2 internal/IO exception.
const (
	exitOK       = 0
	exitFinding  = 1
	exitInternal = 2
)

// errFindings is returned by subcommands (diff, check) that completed
// cleanly but detected something to report (a diff, an integrity failure) -
// distinct from a genuine error, but still mapped to exitFinding.
type errFindings struct{ count int }

func (e *errFindings) Error() string { return "findings reported" }

// dispatch logs err (if any) and returns the process exit code, centralizing
// the teacher's per-branch os.Exit(-1) calls into one place now that a
// single binary has many subcommands.
func dispatch(log logger, err error) int {
	if err == nil {
		return exitOK
	}
	if _, ok := err.(*errFindings); ok {
		return exitFinding
	}
	switch {
	case dumperr.Is(err, dumperr.InvalidArgument), dumperr.Is(err, dumperr.BadFormat),
		dumperr.Is(err, dumperr.Truncated), dumperr.Is(err, dumperr.IntegrityFailure),
		dumperr.Is(err, dumperr.MissingMapping):
		log.Errorf("%v", err)
		return exitFinding
	default:
		log.Errorf("%v", err)
		return exitInternal
	}
}

type logger interface {
	Errorf(format string, args ...interface{})
}

func exit(code int) { os.Exit(code) }

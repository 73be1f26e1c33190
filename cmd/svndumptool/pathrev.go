package main

import (
	"strconv"
	"strings"

	"github.com/grazhopper/svndumptool/dumperr"
)

// parsePathAtRev splits "path@rev" into its parts. rev is -1 and atHead is
// true if no "@rev" suffix was given, meaning "as of the last revision in
// the dump" (format 2 carries full fulltext per revision, so there is no
// random-access index to seek with - the whole history up to rev is
// replayed to answer path/ls/export queries).
func parsePathAtRev(s string) (path string, rev int, atHead bool, err error) {
	i := strings.LastIndex(s, "@")
	if i < 0 {
		return s, -1, true, nil
	}
	path = s[:i]
	rev, convErr := strconv.Atoi(s[i+1:])
	if convErr != nil {
		return "", 0, false, dumperr.New(dumperr.InvalidArgument, "malformed path@rev: "+s)
	}
	return path, rev, false, nil
}

// Package version holds build metadata stamped in via -ldflags, in the
// shape svndumptool's main() consults for kingpin's Version(...) output.
package version

import "fmt"

// These are overridden at link time, e.g.:
//   -ldflags "-X github.com/grazhopper/svndumptool/internal/version.Version=1.2.3"
var (
	Name      = "svndumptool"
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// Print renders a one-line version string for prog, e.g. for
// kingpin.Version(version.Print("svndumptool")).
func Print(prog string) string {
	return fmt.Sprintf("%s version %s (commit %s, built %s)", prog, Version, Commit, BuildDate)
}

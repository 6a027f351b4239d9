// Package version carries build metadata injected with
// -ldflags "-X github.com/ericogr/dnd-combat-sim/internal/version.Version=...".
package version

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)

// IsDirty reports whether the binary was built from a modified tree.
func IsDirty() bool { return Dirty == "true" }

// String renders the metadata on one line, e.g. "v1.2.0 (abc123, dirty)".
func String() string {
	s := fmt.Sprintf("%s (%s", Version, Commit)
	if Date != "" {
		s += ", " + Date
	}
	if IsDirty() {
		s += ", dirty"
	}
	return s + ")"
}

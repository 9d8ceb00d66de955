// Package version exposes the dialogd build metadata stamped in via
// -ldflags at release time.
package version

//nolint:revive // Overwritten by the build pipeline.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

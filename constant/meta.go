// Package constant defines immutable application-level identifiers and build metadata.
package constant

const (
	// Lectern is the canonical application identifier used for filesystem paths and CLI branding.
	Lectern = "lectern"

	// Version is the current application semantic version string.
	Version = "0.3.0"

	// UserAgent is sent with reachability probes and analytics uploads.
	UserAgent = Lectern + "/" + Version
)

// Build metadata, overridden with -ldflags "-X" at release time.
var (
	BuiltAt  = "unknown"
	BuiltBy  = "unknown"
	Revision = "unknown"
)

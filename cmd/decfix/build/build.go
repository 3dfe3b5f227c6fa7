package build

// Set with -ldflags at build time
var (
	Version = "development"
	Commit  = "unknown"
	Time    = "unknown"
)

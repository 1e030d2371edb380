package i18n

// Version information.
// These values can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/pilipandr770/sekretar-sub006.Version=1.0.0"
const (
	// Name is the application name.
	Name = "sekretar-i18n"

	// Description is a short description of the application.
	Description = "Translation catalog store, cache, and health monitoring"

	// Version is the semantic version of the application.
	Version = "0.1.0"
)

// BuildInfo set via ldflags during release builds.
var (
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// FullVersion returns the version string with optional build info.
func FullVersion() string {
	v := Version
	if GitCommit != "unknown" && GitCommit != "" {
		short := GitCommit
		if len(short) > 7 {
			short = short[:7]
		}
		v += "+" + short
	}
	return v
}

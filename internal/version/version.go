// Package version carries the build identity, overridden at link time:
//
//	-ldflags "-X .../internal/version.Version=v1.2.3"
package version

var (
	// Version is the current application version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)

// String renders the build identity for -version output.
func String() string {
	return Version + " (" + GitSHA + ", built " + BuildTime + ")"
}

// Package version exposes the xlm build version.
package version

// Version is the xlm version string, overridden at build time via
// -ldflags "-X github.com/blooym/xlm/pkg/version.Version=v1.2.3".
var Version = "dev" //nolint:gochecknoglobals // Set by the linker at build time.

// GetVersion returns the version of the running xlm binary.
func GetVersion() string {
	return Version
}

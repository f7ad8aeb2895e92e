// Package version exposes the build version injected at link time.
package version

// version is set via -ldflags by the mage Build target.
var version = "v0.0.0"

// Value returns the CLI version string.
func Value() string {
	return version
}

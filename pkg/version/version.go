// Package version reports the profdiff build version.
package version

import "strings"

// version is set at build time:
//
//	go build -ldflags "-X github.com/rshade/profdiff/pkg/version.version=v1.2.3"
var version = "dev" //nolint:gochecknoglobals // set by ldflags

// GetVersion returns the build version without a leading "v".
func GetVersion() string {
	return strings.TrimPrefix(version, "v")
}

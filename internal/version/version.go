// Package version holds build identity for the sable CLI and server.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

var (
	// Number is the semantic version, plain text. Machine surfaces
	// (SARIF tool metadata, LSP serverInfo) use it as is.
	Number = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Pretty renders Number with each semver component colored. With colors
// disabled it degrades to Number itself.
func Pretty() string {
	parts := strings.SplitN(Number, ".", 3)
	if len(parts) != 3 {
		return Number
	}
	return majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
}

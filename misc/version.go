// Package misc holds build time program identification.
package misc

import (
	"runtime/debug"
	"strings"
)

const appName = "csv2js"

// set by linker: -ldflags "-X csv2js/misc.version=... -X csv2js/misc.gitHash=..."
var (
	version = "dev"
	gitHash = ""
)

// GetAppName returns program name to be used in logs and file names.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	if version != "dev" {
		return version
	}
	if bi, ok := debug.ReadBuildInfo(); ok && len(bi.Main.Version) > 0 && bi.Main.Version != "(devel)" {
		return strings.TrimPrefix(bi.Main.Version, "v")
	}
	return version
}

// GetGitHash returns VCS revision program was built from, if known.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}

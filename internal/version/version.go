// Package version reports the typelint version and build details.
package version

import (
	"runtime"
	"runtime/debug"
	"slices"
)

// version is set at build time with -ldflags "-X ...version.version=v1.2.3".
var version = "dev"

// grammarModule is the tree-sitter grammar used to verify fixed output.
const grammarModule = "github.com/tree-sitter/tree-sitter-typescript"

// Version returns the current version string with the grammar suffix.
func Version() string {
	if gv := GrammarVersion(); gv != "" {
		return version + " (tree-sitter-typescript " + gv + ")"
	}
	return version
}

// RawVersion returns the semantic version string without any suffix.
func RawVersion() string {
	return version
}

// GrammarVersion returns the linked tree-sitter-typescript version from
// build info, or "" when unavailable.
func GrammarVersion() string {
	gv, _ := readBuildInfo()
	return gv
}

// GoVersion returns the Go toolchain version used for the build.
func GoVersion() string {
	return runtime.Version()
}

// readBuildInfo reads debug.ReadBuildInfo once and extracts both
// the grammar dependency version and the VCS revision.
func readBuildInfo() (string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	var grammar, commit string
	if idx := slices.IndexFunc(info.Deps, func(dep *debug.Module) bool {
		return dep.Path == grammarModule
	}); idx >= 0 {
		grammar = info.Deps[idx].Version
	}
	if idx := slices.IndexFunc(info.Settings, func(s debug.BuildSetting) bool {
		return s.Key == "vcs.revision"
	}); idx >= 0 {
		commit = info.Settings[idx].Value
		if len(commit) > 12 {
			commit = commit[:12]
		}
	}
	return grammar, commit
}

// Info holds structured version information for machine-readable output.
type Info struct {
	Version        string   `json:"version"`
	GrammarVersion string   `json:"grammarVersion,omitempty"`
	Platform       Platform `json:"platform"`
	GoVersion      string   `json:"goVersion"`
	GitCommit      string   `json:"gitCommit,omitempty"`
}

// Platform describes the OS and architecture.
type Platform struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// GetInfo returns structured version information.
func GetInfo() Info {
	grammar, commit := readBuildInfo()
	return Info{
		Version:        RawVersion(),
		GrammarVersion: grammar,
		Platform: Platform{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
		GoVersion: GoVersion(),
		GitCommit: commit,
	}
}

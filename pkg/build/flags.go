// SPDX-License-Identifier: MIT
//
// Package build exposes metadata embedded at link time with -ldflags: the
// application name, build timestamp, Git commit hash and semantic version.
// Development builds carry "dev" placeholders.
package build

import "fmt"

// Description is the one-line summary shown by the CLI.
const Description = "EEG recording sniffer, parser, spectral analyzer and bulk loader"

type Info struct {
	Name    string
	Time    string
	Commit  string
	Version string
}

// String renders the version line printed by --version.
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", i.Name, i.Version, i.Commit, i.Time)
}

// Populated by -ldflags "-X eeg/pkg/build.buildName=...".
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildInfo    = defaultInfo()
)

func defaultInfo() *Info {
	return &Info{
		Name:    "eeg",
		Time:    "dev",
		Commit:  "dev",
		Version: "dev",
	}
}

// Initialize copies the ldflags variables into the build info. It returns
// an error naming the first missing flag and leaves the development
// defaults in place.
func Initialize() error {
	if buildName == "" {
		return fmt.Errorf("BuildName is required")
	}
	if buildTime == "" {
		return fmt.Errorf("BuildTime is required")
	}
	if buildCommit == "" {
		return fmt.Errorf("BuildCommit is required")
	}
	if buildVersion == "" {
		return fmt.Errorf("BuildVersion is required")
	}

	buildInfo.Name = buildName
	buildInfo.Time = buildTime
	buildInfo.Commit = buildCommit
	buildInfo.Version = buildVersion

	return nil
}

// GetBuildInfo returns the current build information.
func GetBuildInfo() *Info {
	return buildInfo
}

// Package versions provides build and version information for the Marena API server.
package versions

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

const unknown = "unknown"

// Values overridden at build time with -ldflags "-X ...".
var (
	// Version is the released version of the server, "dev" for local builds
	Version = "dev"
	// Commit is the git commit the binary was built from
	Commit = unknown
	// BuildDate is the RFC3339 timestamp of the build
	BuildDate = unknown
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the version information of the running binary.
func Get() Info {
	return build(Version, Commit, BuildDate, readVCS)
}

// String renders the info on a single line.
func (i Info) String() string {
	return fmt.Sprintf("marena-api %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.BuildDate, i.GoVersion, i.Platform)
}

// readVCS returns the revision and time recorded by the go toolchain, if any.
func readVCS() (revision, buildTime string) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.time":
			buildTime = setting.Value
		}
	}
	return revision, buildTime
}

func build(version, commit, buildDate string, vcs func() (string, string)) Info {
	if version == "dev" {
		revision, buildTime := vcs()
		if commit == unknown && revision != "" {
			commit = revision
		}
		if buildDate == unknown && buildTime != "" {
			buildDate = buildTime
		}
		if commit != unknown {
			version = fmt.Sprintf("build-%.8s", commit)
		}
	}

	if t, err := time.Parse(time.RFC3339, buildDate); err == nil {
		buildDate = t.UTC().Format("2006-01-02 15:04:05 MST")
	}

	return Info{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

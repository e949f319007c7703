package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Overridden via -ldflags "-X".
var (
	Version   = "0.1.0"
	Commit    = "dev"
	BuildDate = "unknown"
)

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	UserAgent string `json:"user_agent"`
}

// Get returns the build info. Without an injected commit the VCS revision
// recorded by the go tool is used when available.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		UserAgent: UserAgent(),
	}
	if info.Commit == "dev" {
		if rev := vcsRevision(); rev != "" {
			info.Commit = rev
		}
	}
	return info
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit:%s, built:%s, %s)", i.Version, i.Commit, i.BuildDate, i.GoVersion)
}

// UserAgent returns the User-Agent header value sent with every request.
func UserAgent() string {
	return "scrapybara-go/" + Version
}

func vcsRevision() string {
	build, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range build.Settings {
		if setting.Key == "vcs.revision" {
			return setting.Value
		}
	}
	return ""
}

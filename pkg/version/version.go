package version

import (
	"fmt"
	"runtime"
)

// Populated at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the payload served by the version endpoint.
type Info struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

func Get() Info {
	return Info{
		Service:   "treviro-service",
		Version:   Version,
		Commit:    Commit,
		BuildDate: Date,
		GoVersion: runtime.Version(),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("%s %s (%s, built %s, %s)",
		i.Service, i.Version, i.Commit, i.BuildDate, i.GoVersion)
}

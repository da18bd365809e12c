package version

import (
	"runtime"
	"runtime/debug"
	"strconv"
)

const ServiceName = "caption-relay"

// Set at build time via -ldflags "-X caption-relay/version.Version=...".
// VCS data from debug.ReadBuildInfo fills in whatever is left empty.
var (
	Version = "dev"
	Commit  = ""
	BuiltAt = ""
)

type Info struct {
	Service  string `json:"service"`
	Version  string `json:"version"`
	Commit   string `json:"commit,omitempty"`
	BuiltAt  string `json:"built_at,omitempty"`
	Dirty    *bool  `json:"dirty,omitempty"`
	Go       string `json:"go_version"`
	Platform string `json:"platform"`
}

func Get() Info {
	info := Info{
		Service:  ServiceName,
		Version:  Version,
		Commit:   Commit,
		BuiltAt:  BuiltAt,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.BuiltAt == "" {
				info.BuiltAt = s.Value
			}
		case "vcs.modified":
			if b, err := strconv.ParseBool(s.Value); err == nil {
				info.Dirty = &b
			}
		}
	}
	return info
}

// String is the one-line form logged at startup.
func (i Info) String() string {
	s := i.Service + " " + i.Version
	if i.Commit != "" {
		commit := i.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		s += " (" + commit + ")"
	}
	return s + " " + i.Go + " " + i.Platform
}

// Package buildinfo contains build-time metadata, kept apart from user configuration.
//
// Release builds inject the values with
//
//	-ldflags "-X github.com/tphakala/applog/internal/buildinfo.version=v1.2.3 -X github.com/tphakala/applog/internal/buildinfo.buildDate=2026-10-16"
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// UnknownValue is reported for metadata the binary does not carry.
const UnknownValue = "unknown"

// Set by the linker.
var (
	version   string
	buildDate string
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	BuildDate string `json:"build_date"`
	Revision  string `json:"revision"`
	GoVersion string `json:"go_version"`
}

// Get returns the metadata of the running binary. Values missing from the
// linker flags are taken from the module build info when available.
func Get() Info {
	info := New(version, buildDate, "")
	info.GoVersion = runtime.Version()

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if info.Version == UnknownValue && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			if info.BuildDate == UnknownValue {
				info.BuildDate = s.Value
			}
		}
	}
	return info
}

// New returns Info with empty values replaced by UnknownValue.
func New(version, buildDate, revision string) Info {
	return Info{
		Version:   orUnknown(version),
		BuildDate: orUnknown(buildDate),
		Revision:  orUnknown(revision),
		GoVersion: runtime.Version(),
	}
}

// String formats the info for the version command.
func (i Info) String() string {
	return fmt.Sprintf("applog %s (built %s, revision %s, %s)", i.Version, i.BuildDate, shortRevision(i.Revision), i.GoVersion)
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

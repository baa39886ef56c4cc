// Package platform holds the closed table of supported target platforms
// and the file-extension triple each one uses for build artifacts.
package platform

import (
	"fmt"

	"github.com/containerd/platforms"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Info is the per-platform extension triple a compiler adapter consults
// when computing an entity's final artifact path. It embeds the OCI
// platform struct instead of inventing a parallel OS/architecture pair, so
// normalization and matching can reuse containerd/platforms throughout.
type Info struct {
	ocispec.Platform

	ExeExt       string
	StaticLibExt string
	SharedLibExt string
}

// table is the closed set of platforms this build accepts for
// --platform/target_platform. Querying an unlisted name is a fatal
// startup error, per spec.
var table = map[string]Info{
	"win32": {
		Platform:     ocispec.Platform{OS: "windows", Architecture: "amd64"},
		ExeExt:       "exe",
		StaticLibExt: "lib",
		SharedLibExt: "dll",
	},
	"linux": {
		Platform:     ocispec.Platform{OS: "linux", Architecture: "amd64"},
		ExeExt:       "",
		StaticLibExt: "a",
		SharedLibExt: "so",
	},
	"darwin": {
		Platform:     ocispec.Platform{OS: "darwin", Architecture: "arm64"},
		ExeExt:       "",
		StaticLibExt: "a",
		SharedLibExt: "dylib",
	},
}

// UnknownPlatformError is returned when a --platform value is not in the
// closed table; the driver treats this as a fatal startup error.
type UnknownPlatformError struct {
	Name string
}

func (e *UnknownPlatformError) Error() string {
	return fmt.Sprintf("unknown target platform %q", e.Name)
}

// Lookup normalizes name (accepting containerd/platforms' canonical
// "os/arch" spelling as well as the table's bare aliases like "win32") and
// returns its Info, or an *UnknownPlatformError if name matches nothing in
// the closed table.
func Lookup(name string) (Info, error) {
	if info, ok := table[name]; ok {
		return info, nil
	}

	parsed, err := platforms.Parse(name)
	if err == nil {
		for _, info := range table {
			if platforms.Only(info.Platform).Match(parsed) {
				return info, nil
			}
		}
	}

	return Info{}, &UnknownPlatformError{Name: name}
}

// Names returns the closed table's keys, for --platform help text.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}

// Package collector implements the per-platform inventory collectors.
//
// Dispatch is a closed set: the host's collector is selected once at startup
// from runtime.GOOS, or forced explicitly when reading a snapshot taken on
// another machine.
package collector

import (
	"fmt"
	"runtime"

	"github.com/unisbom/unisbom/internal/parse"
	"github.com/unisbom/unisbom/internal/source"
	"github.com/unisbom/unisbom/pkg/models"
)

// Collector produces the normalized records for one platform.
type Collector interface {
	// Platform names the platform branch, matching runtime.GOOS.
	Platform() string
	// Collect returns all gathered records plus one diagnostic for every
	// fragment or category that could not be used. It never fails outright;
	// the caller decides whether an entirely empty result is fatal.
	Collect() ([]models.Record, []models.Diagnostic)
}

// ForHost returns the collector for the running host, wired to the live
// system sources.
func ForHost() (Collector, error) {
	return ForPlatform(runtime.GOOS)
}

// ForPlatform returns the live collector for an explicit platform name.
func ForPlatform(name string) (Collector, error) {
	switch name {
	case "darwin":
		return NewDarwin(liveProfile()), nil
	case "windows":
		return NewWindows(liveVersionBanner(), liveUninstallTree(), liveDriverTable()), nil
	case "linux":
		return NewLinux(liveOSRelease(), livePackageDB()), nil
	}
	return nil, fmt.Errorf("unsupported platform %q", name)
}

// ForSnapshot returns the platform's collector with every source redirected
// to the dump files inside dir.
func ForSnapshot(name, dir string) (Collector, error) {
	switch name {
	case "darwin":
		return NewDarwin(source.Snapshot(dir, parse.SourceProfile)), nil
	case "windows":
		return NewWindows(
			source.Snapshot(dir, parse.SourceOS),
			source.Snapshot(dir, parse.SourceApps),
			source.Snapshot(dir, parse.SourceDrivers),
		), nil
	case "linux":
		return NewLinux(
			source.Snapshot(dir, parse.SourceOS),
			source.Snapshot(dir, parse.SourcePackages),
		), nil
	}
	return nil, fmt.Errorf("unsupported platform %q", name)
}

func sourceDiag(src string, err error) models.Diagnostic {
	return models.Diagnostic{Source: src, Detail: err.Error()}
}

package collector

import (
	"github.com/unisbom/unisbom/internal/parse"
	"github.com/unisbom/unisbom/internal/source"
	"github.com/unisbom/unisbom/pkg/models"
)

// Linux collects the Linux inventory: the OS record from os-release and
// application records from whichever package database the host carries.
// The database flavor is sniffed from the bytes, not the path, so snapshot
// dumps work the same as live files.
type Linux struct {
	osRelease source.Source
	packages  source.Source
}

// NewLinux creates a Linux collector reading from the given sources.
func NewLinux(osRelease, packages source.Source) *Linux {
	return &Linux{osRelease: osRelease, packages: packages}
}

func liveOSRelease() source.Source {
	return source.File(parse.SourceOS, "/etc/os-release", "/usr/lib/os-release")
}

func livePackageDB() source.Source {
	return source.File(parse.SourcePackages,
		"/var/lib/dpkg/status",
		"/var/lib/rpm/rpmdb.sqlite",
		"/usr/lib/sysimage/rpm/rpmdb.sqlite",
	)
}

// Platform returns the platform name
func (l *Linux) Platform() string { return "linux" }

// Collect gathers the OS record and the package records in that order.
func (l *Linux) Collect() ([]models.Record, []models.Diagnostic) {
	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)

	if raw, err := l.osRelease.Fetch(); err != nil {
		diags = append(diags, sourceDiag(parse.SourceOS, err))
	} else if rec, err := parse.ParseOSRelease(raw); err != nil {
		diags = append(diags, sourceDiag(parse.SourceOS, err))
	} else {
		records = append(records, rec)
	}

	if raw, err := l.packages.Fetch(); err != nil {
		diags = append(diags, sourceDiag(parse.SourcePackages, err))
	} else {
		var recs []models.Record
		var parseDiags []models.Diagnostic
		var parseErr error
		if parse.IsSQLiteData(raw) {
			recs, parseDiags, parseErr = parse.ParseRPMDB(raw)
		} else {
			recs, parseDiags, parseErr = parse.ParseDpkgStatus(raw)
		}
		if parseErr != nil {
			diags = append(diags, sourceDiag(parse.SourcePackages, parseErr))
		} else {
			records = append(records, recs...)
			diags = append(diags, parseDiags...)
		}
	}

	return records, diags
}

package collector

import (
	"fmt"
	"strings"

	"github.com/unisbom/unisbom/internal/parse"
	"github.com/unisbom/unisbom/internal/source"
	"github.com/unisbom/unisbom/pkg/models"
)

// Windows collects the Windows inventory from three independent sources:
// the version banner, the uninstall registry tree, and the driver table.
type Windows struct {
	version source.Source
	apps    source.Source
	drivers source.Source
}

// NewWindows creates a Windows collector reading from the given sources.
func NewWindows(version, apps, drivers source.Source) *Windows {
	return &Windows{version: version, apps: apps, drivers: drivers}
}

func liveVersionBanner() source.Source {
	return source.Exec(parse.SourceOS, "cmd", "/c", "ver")
}

func liveUninstallTree() source.Source {
	return source.Join(parse.SourceApps,
		source.Exec("uninstall", "reg", "query",
			`HKLM\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`, "/s"),
		source.Exec("uninstall-wow64", "reg", "query",
			`HKLM\SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`, "/s"),
	)
}

func liveDriverTable() source.Source {
	return source.Exec(parse.SourceDrivers, "driverquery", "/v", "/FO", "CSV")
}

// Platform returns the platform name
func (w *Windows) Platform() string { return "windows" }

// Collect gathers the OS record, application records, and driver records in
// that order. A failing category contributes nothing but a diagnostic.
func (w *Windows) Collect() ([]models.Record, []models.Diagnostic) {
	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)

	if raw, err := w.version.Fetch(); err != nil {
		diags = append(diags, sourceDiag(parse.SourceOS, err))
	} else if rec, err := windowsOSRecord(raw); err != nil {
		diags = append(diags, sourceDiag(parse.SourceOS, err))
	} else {
		records = append(records, rec)
	}

	if raw, err := w.apps.Fetch(); err != nil {
		diags = append(diags, sourceDiag(parse.SourceApps, err))
	} else if recs, parseDiags, err := parse.ParseRegistryApps(raw); err != nil {
		diags = append(diags, sourceDiag(parse.SourceApps, err))
	} else {
		records = append(records, recs...)
		diags = append(diags, parseDiags...)
	}

	if raw, err := w.drivers.Fetch(); err != nil {
		diags = append(diags, sourceDiag(parse.SourceDrivers, err))
	} else if recs, parseDiags, err := parse.ParseDriverTable(raw); err != nil {
		diags = append(diags, sourceDiag(parse.SourceDrivers, err))
	} else {
		records = append(records, recs...)
		diags = append(diags, parseDiags...)
	}

	return records, diags
}

// windowsOSRecord parses the "cmd /c ver" banner, a line like
// "Microsoft Windows [Version 10.0.19044.1766]".
func windowsOSRecord(raw []byte) (models.Record, error) {
	banner := strings.TrimSpace(string(raw))
	if banner == "" {
		return models.Record{}, fmt.Errorf("%w: empty version banner", parse.ErrMalformedSource)
	}
	start := strings.Index(banner, "[Version ")
	if start < 0 {
		return models.Record{}, fmt.Errorf("%w: no version in banner %q", parse.ErrMalformedSource, banner)
	}
	rest := banner[start+len("[Version "):]
	end := strings.Index(rest, "]")
	if end < 0 {
		return models.Record{}, fmt.Errorf("%w: unterminated version in banner %q", parse.ErrMalformedSource, banner)
	}
	return models.Record{
		Kind:       models.KindOS,
		Name:       "Microsoft Windows",
		ID:         "Microsoft Windows",
		Version:    strings.TrimSpace(rest[:end]),
		Path:       "C:\\",
		Publishers: []string{"Microsoft"},
	}.Normalized(), nil
}

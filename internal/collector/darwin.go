package collector

import (
	"github.com/unisbom/unisbom/internal/parse"
	"github.com/unisbom/unisbom/internal/source"
	"github.com/unisbom/unisbom/pkg/models"
)

// Darwin collects the macOS inventory. A single profile source covers the
// OS, installed applications, and loaded kernel extensions.
type Darwin struct {
	profile source.Source
}

// NewDarwin creates a Darwin collector reading from the given profile source.
func NewDarwin(profile source.Source) *Darwin {
	return &Darwin{profile: profile}
}

func liveProfile() source.Source {
	return source.Exec(parse.SourceProfile, "system_profiler",
		"SPSoftwareDataType", "SPExtensionsDataType", "SPApplicationsDataType",
		"-detailLevel", "full", "-xml")
}

// Platform returns the platform name
func (d *Darwin) Platform() string { return "darwin" }

// Collect gathers the full inventory from the profiler output and regroups
// it as OS record first, then applications, then drivers.
func (d *Darwin) Collect() ([]models.Record, []models.Diagnostic) {
	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)

	raw, err := d.profile.Fetch()
	if err != nil {
		return records, append(diags, sourceDiag(parse.SourceProfile, err))
	}
	parsed, parseDiags, err := parse.ParseProfile(raw)
	if err != nil {
		return records, append(diags, sourceDiag(parse.SourceProfile, err))
	}
	diags = append(diags, parseDiags...)
	records = append(records, groupByKind(parsed)...)
	return records, diags
}

// groupByKind partitions records into OS, application, driver order while
// preserving source order inside each group. Records of any other kind keep
// their relative order after the known groups.
func groupByKind(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	for _, kind := range []models.Kind{models.KindOS, models.KindApplication, models.KindDriver} {
		for _, r := range records {
			if r.Kind == kind {
				out = append(out, r)
			}
		}
	}
	for _, r := range records {
		switch r.Kind {
		case models.KindOS, models.KindApplication, models.KindDriver:
		default:
			out = append(out, r)
		}
	}
	return out
}

// Package aggregator runs a platform collector and assembles the final
// inventory.
package aggregator

import (
	"errors"

	"github.com/unisbom/unisbom/internal/collector"
	"github.com/unisbom/unisbom/pkg/models"
)

// ErrCollectionFailed reports a run in which no category produced any
// records at all. Partial data never triggers it.
var ErrCollectionFailed = errors.New("no records could be collected")

// Run collects the platform inventory and deduplicates it. The returned
// inventory carries the accumulated diagnostics even when the run fails, so
// callers can still report why nothing was collected.
func Run(c collector.Collector) (*models.Inventory, error) {
	records, diags := c.Collect()
	if diags == nil {
		diags = make([]models.Diagnostic, 0)
	}
	inv := &models.Inventory{
		Records:     dedupe(records),
		Diagnostics: diags,
	}
	if len(inv.Records) == 0 {
		return inv, ErrCollectionFailed
	}
	return inv, nil
}

type dedupKey struct {
	kind models.Kind
	id   string
}

// dedupe drops records sharing a (kind, id). The later modified instant
// wins; equal instants keep the first seen. The survivor stays at the
// first-seen position so the overall order is stable.
func dedupe(records []models.Record) []models.Record {
	out := make([]models.Record, 0, len(records))
	seen := make(map[dedupKey]int)
	for _, rec := range records {
		key := dedupKey{kind: rec.Kind, id: rec.ID}
		if pos, ok := seen[key]; ok {
			if rec.Modified.After(out[pos].Modified) {
				out[pos] = rec
			}
			continue
		}
		seen[key] = len(out)
		out = append(out, rec)
	}
	return out
}

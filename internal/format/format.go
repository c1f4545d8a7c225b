// Package format renders an inventory as a textual summary or as structured
// output.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/unisbom/unisbom/pkg/models"
)

// Mode selects the output rendering.
type Mode string

// Supported output modes
const (
	ModeText Mode = "text"
	ModeJSON Mode = "json"
)

// ParseMode validates a mode name coming from the CLI or the environment.
// An empty name selects the textual summary.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeText:
		return ModeText, nil
	case ModeJSON:
		return ModeJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q", name)
}

// Write renders the inventory's records to w. Diagnostics are not part of
// the rendered output; they belong on the log stream.
func Write(w io.Writer, inv *models.Inventory, mode Mode) error {
	if mode == ModeJSON {
		return writeJSON(w, inv.Records)
	}
	return writeSummary(w, inv.Records)
}

// writeSummary prints records grouped by kind in order of first appearance,
// one "name version" line per record. Order inside a group is the
// aggregator's order.
func writeSummary(w io.Writer, records []models.Record) error {
	groups := make([]models.Kind, 0)
	byKind := make(map[models.Kind][]models.Record)
	for _, rec := range records {
		if _, ok := byKind[rec.Kind]; !ok {
			groups = append(groups, rec.Kind)
		}
		byKind[rec.Kind] = append(byKind[rec.Kind], rec)
	}

	var b strings.Builder
	for i, kind := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(kind))
		b.WriteString(":\n")
		for _, rec := range byKind[kind] {
			b.WriteString("  ")
			b.WriteString(rec.Name)
			if rec.Version != "" {
				b.WriteByte(' ')
				b.WriteString(rec.Version)
			}
			b.WriteByte('\n')
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// writeJSON serializes every record field, keeping empty strings, empty
// publisher lists, and the sentinel modified instant in place so consumers
// never special-case absent fields.
func writeJSON(w io.Writer, records []models.Record) error {
	if records == nil {
		records = make([]models.Record, 0)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(records)
}

// Package models defines the unified record schema emitted by the inventory pipeline
package models

import "time"

// Epoch is the sentinel instant used when a source provides no reliable
// timestamp, so the modified field is always a valid instant rather than null.
var Epoch = time.Unix(0, 0).UTC()

// Kind classifies an inventoried item. The set is open: values outside the
// named constants survive decoding and re-encoding untouched so future
// categories do not break consumers.
type Kind string

// Known record kinds
const (
	KindOS          Kind = "OS"
	KindApplication Kind = "Application"
	KindDriver      Kind = "Driver"
)

// Record is the normalized representation of one inventoried item
type Record struct {
	Kind       Kind      `json:"kind"`
	Name       string    `json:"name"`
	ID         string    `json:"id"`
	Version    string    `json:"version"`
	Path       string    `json:"path"`
	Modified   time.Time `json:"modified"`
	Publishers []string  `json:"publishers"`
}

// Normalized returns a copy of the record with the schema rules applied:
// the name falls back to the id when empty, the modified instant is forced
// to UTC with the epoch sentinel standing in for unknown timestamps, and
// publishers is detached into a non-nil slice so it serializes as an empty
// list rather than null. Parsers call this on every record they emit.
func (r Record) Normalized() Record {
	if r.Name == "" {
		r.Name = r.ID
	}
	if r.Modified.IsZero() {
		r.Modified = Epoch
	} else {
		r.Modified = r.Modified.UTC()
	}
	pubs := make([]string, 0, len(r.Publishers))
	pubs = append(pubs, r.Publishers...)
	r.Publishers = pubs
	return r
}

// Diagnostic reports one malformed input fragment that was skipped
type Diagnostic struct {
	Source string `json:"source"`
	Detail string `json:"detail"`
}

// Inventory is the aggregate result of one collection run
type Inventory struct {
	Records     []Record     `json:"records"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

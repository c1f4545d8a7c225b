// Package parse converts raw inventory source output into normalized records.
//
// One file covers one raw format. Parsers are tolerant: a malformed fragment
// inside an otherwise decodable input yields a Diagnostic and is skipped,
// while input that cannot be interpreted as the expected format at all fails
// with ErrMalformedSource.
package parse

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unisbom/unisbom/pkg/models"
)

// ErrMalformedSource reports adapter output that could not be interpreted as
// its expected format at all. Recoverable at the collector level: the
// affected category contributes nothing.
var ErrMalformedSource = errors.New("malformed source")

// Source labels attached to diagnostics, matching the adapter names used by
// the collectors and by snapshot directories.
const (
	SourceProfile  = "profile"
	SourceApps     = "apps"
	SourceDrivers  = "drivers"
	SourcePackages = "packages"
	SourceOS       = "os"
)

func diag(source, format string, args ...any) models.Diagnostic {
	return models.Diagnostic{Source: source, Detail: fmt.Sprintf(format, args...)}
}

// IsSQLiteData reports whether data begins with the SQLite file magic.
func IsSQLiteData(data []byte) bool {
	if len(data) < 16 {
		return false
	}
	// SQLite magic bytes: "SQLite format 3\000"
	return bytes.Equal(data[:16], []byte("SQLite format 3\x00"))
}

// IsRegistryHive reports whether data begins with the regf hive magic.
func IsRegistryHive(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("regf"))
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// stringList flattens a value that may be a single string or a list of
// strings into a slice, preserving encounter order.
func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// coerceTime accepts the timestamp shapes seen in decoded plist values:
// native dates and a few known string layouts. Unknown shapes produce the
// zero time, which normalization turns into the epoch sentinel.
func coerceTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case string:
		return parseTimeString(val)
	}
	return time.Time{}
}

func parseTimeString(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("1/2/2006 3:04:05 PM", value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

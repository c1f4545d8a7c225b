package parse

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/unisbom/unisbom/pkg/models"
)

// ParseDriverTable parses driverquery CSV output into driver records. Column
// positions are taken from the header row on every run; they are not stable
// across Windows versions and are never assumed.
func ParseDriverTable(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty driver table", ErrMalformedSource)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	idx := make(map[string]int)
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	if _, ok := idx["Module Name"]; !ok {
		return nil, nil, fmt.Errorf("%w: driver table header has no Module Name column", ErrMalformedSource)
	}

	get := func(row []string, key string) string {
		pos, ok := idx[key]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}

	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)
	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			diags = append(diags, diag(SourceDrivers, "driver row %d: %v", rowNum, err))
			continue
		}
		if len(row) < len(header) {
			diags = append(diags, diag(SourceDrivers, "driver row %d has %d of %d columns", rowNum, len(row), len(header)))
			continue
		}
		moduleName := get(row, "Module Name")
		if moduleName == "" {
			diags = append(diags, diag(SourceDrivers, "driver row %d has no module name", rowNum))
			continue
		}
		linkDate := get(row, "Link Date")
		modified := parseTimeString(linkDate)
		if linkDate != "" && modified.IsZero() {
			diags = append(diags, diag(SourceDrivers, "driver row %d has unparseable link date %q", rowNum, linkDate))
		}
		records = append(records, models.Record{
			Kind:     models.KindDriver,
			Name:     get(row, "Display Name"),
			ID:       moduleName,
			Path:     get(row, "Path"),
			Modified: modified,
		}.Normalized())
	}

	return records, diags, nil
}

package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/unisbom/unisbom/pkg/models"
)

// ParseDpkgStatus parses a dpkg status database into application records.
// Blocks are separated by blank lines; only packages whose Status marks them
// installed are emitted. Entries in other states are expected churn and are
// skipped silently.
func ParseDpkgStatus(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty package database", ErrMalformedSource)
	}

	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)
	fields := make(map[string]string)
	block := 0

	flush := func() {
		if len(fields) == 0 {
			return
		}
		block++
		name := fields["Package"]
		switch {
		case name == "":
			diags = append(diags, diag(SourcePackages, "status block %d has no Package field", block))
		case strings.HasSuffix(fields["Status"], " installed"):
			var publishers []string
			if m := fields["Maintainer"]; m != "" {
				publishers = []string{m}
			}
			records = append(records, models.Record{
				Kind:       models.KindApplication,
				Name:       name,
				ID:         name,
				Version:    fields["Version"],
				Publishers: publishers,
			}.Normalized())
		}
		fields = make(map[string]string)
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			// continuation of a multi-line field such as Description
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = strings.TrimSpace(parts[1])
	}
	flush()

	return records, diags, nil
}

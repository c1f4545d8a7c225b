package parse

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "modernc.org/sqlite"

	"github.com/unisbom/unisbom/pkg/models"
)

// ParseRPMDB parses an rpm sqlite package database into application records.
// The driver needs a file on disk, so the bytes are staged in a temp file
// for the duration of the query.
func ParseRPMDB(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	if !IsSQLiteData(raw) {
		return nil, nil, fmt.Errorf("%w: not a sqlite database", ErrMalformedSource)
	}

	tmpFile, err := os.CreateTemp("", "unisbom_rpmdb_*.sqlite")
	if err != nil {
		return nil, nil, fmt.Errorf("staging rpm database: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.Write(raw); err != nil {
		_ = tmpFile.Close()
		return nil, nil, fmt.Errorf("staging rpm database: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, nil, fmt.Errorf("staging rpm database: %w", err)
	}

	db, err := sql.Open("sqlite", tmpFile.Name())
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer func() { _ = db.Close() }()

	rows, err := db.Query("SELECT name, version, release, installtime FROM Packages")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)
	rowNum := 0
	for rows.Next() {
		rowNum++
		var name, version, release string
		var installTime sql.NullInt64
		if err := rows.Scan(&name, &version, &release, &installTime); err != nil {
			diags = append(diags, diag(SourcePackages, "package row %d: %v", rowNum, err))
			continue
		}
		if name == "" {
			diags = append(diags, diag(SourcePackages, "package row %d has no name", rowNum))
			continue
		}
		fullVersion := version
		if release != "" {
			fullVersion = fmt.Sprintf("%s-%s", version, release)
		}
		var modified time.Time
		if installTime.Valid {
			modified = time.Unix(installTime.Int64, 0)
		}
		records = append(records, models.Record{
			Kind:     models.KindApplication,
			Name:     name,
			ID:       name,
			Version:  fullVersion,
			Modified: modified,
		}.Normalized())
	}
	if err := rows.Err(); err != nil {
		diags = append(diags, diag(SourcePackages, "package scan ended early: %v", err))
	}

	return records, diags, nil
}

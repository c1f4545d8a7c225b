package parse

import (
	"bytes"
	"fmt"
	"strings"

	"howett.net/plist"

	"github.com/unisbom/unisbom/pkg/models"
)

// appleRootChain is attached to the synthesized macOS record. system_profiler
// does not expose the OS signing chain, so the Apple chain is fixed,
// outermost signer first.
var appleRootChain = []string{
	"Apple Code Signing Certification Authority",
	"Apple Root CA",
}

type profileSection struct {
	DataType string           `plist:"_dataType"`
	Items    []map[string]any `plist:"_items"`
}

// ParseProfile parses system_profiler property-list output covering the OS,
// installed applications, and loaded kernel extensions. Sections with an
// unknown data type and unknown keys inside known sections are ignored;
// blocks missing their identity key yield one diagnostic each.
func ParseProfile(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty profile output", ErrMalformedSource)
	}

	var sections []profileSection
	if _, err := plist.Unmarshal(raw, &sections); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	records := make([]models.Record, 0)
	diags := make([]models.Diagnostic, 0)
	for _, section := range sections {
		switch section.DataType {
		case "SPSoftwareDataType":
			for i, item := range section.Items {
				rec, ok := profileOSRecord(item)
				if !ok {
					diags = append(diags, diag(SourceProfile, "software block %d has no os_version", i))
					continue
				}
				records = append(records, rec)
			}
		case "SPApplicationsDataType":
			for i, item := range section.Items {
				rec, ok := profileApplicationRecord(item)
				if !ok {
					diags = append(diags, diag(SourceProfile, "application block %d has no _name", i))
					continue
				}
				records = append(records, rec)
			}
		case "SPExtensionsDataType":
			for i, item := range section.Items {
				rec, ok := profileExtensionRecord(item)
				if !ok {
					diags = append(diags, diag(SourceProfile, "extension block %d has no spext_bundleid", i))
					continue
				}
				records = append(records, rec)
			}
		}
	}

	return records, diags, nil
}

func profileOSRecord(item map[string]any) (models.Record, bool) {
	osVersion := stringValue(item["os_version"])
	if osVersion == "" {
		return models.Record{}, false
	}
	return models.Record{
		Kind:       models.KindOS,
		Name:       "macOS",
		ID:         "macOS",
		Version:    strings.TrimPrefix(osVersion, "macOS "),
		Path:       "/",
		Publishers: appleRootChain,
	}.Normalized(), true
}

func profileApplicationRecord(item map[string]any) (models.Record, bool) {
	name := stringValue(item["_name"])
	if name == "" {
		return models.Record{}, false
	}
	return models.Record{
		Kind:       models.KindApplication,
		Name:       name,
		ID:         name,
		Version:    stringValue(item["version"]),
		Path:       stringValue(item["path"]),
		Modified:   coerceTime(item["lastModified"]),
		Publishers: stringList(item["signed_by"]),
	}.Normalized(), true
}

func profileExtensionRecord(item map[string]any) (models.Record, bool) {
	bundleID := stringValue(item["spext_bundleid"])
	if bundleID == "" {
		return models.Record{}, false
	}
	version := stringValue(item["version"])
	if version == "" {
		version = stringValue(item["spext_version"])
	}
	return models.Record{
		Kind:       models.KindDriver,
		Name:       stringValue(item["_name"]),
		ID:         bundleID,
		Version:    version,
		Path:       stringValue(item["spext_path"]),
		Modified:   coerceTime(item["spext_lastModified"]),
		Publishers: stringList(item["spext_signed_by"]),
	}.Normalized(), true
}

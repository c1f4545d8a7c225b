package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/osv-scalibr/common/windows/registry"

	"github.com/unisbom/unisbom/pkg/models"
)

// uninstallPaths are the registry locations holding installed-application
// entries, relative to the SOFTWARE hive root.
var uninstallPaths = []string{
	"Microsoft\\Windows\\CurrentVersion\\Uninstall",
	"WOW6432Node\\Microsoft\\Windows\\CurrentVersion\\Uninstall",
}

var uninstallValueNames = []string{
	"DisplayName",
	"DisplayVersion",
	"Version",
	"InstallLocation",
	"InstallSource",
	"BundleCachePath",
	"Publisher",
	"InstallDate",
}

// ParseRegistryApps parses the Windows uninstall tree into application
// records. Two raw syntaxes are accepted: the text printed by reg query /s,
// or a raw SOFTWARE hive walked offline. Subkeys without a DisplayName are
// uninstall leftovers and are skipped silently.
func ParseRegistryApps(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty registry output", ErrMalformedSource)
	}
	if IsRegistryHive(raw) {
		return parseRegistryHive(raw)
	}
	return parseRegistryText(raw)
}

func parseRegistryText(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	records := make([]models.Record, 0)
	values := make(map[string]string)
	current := ""
	seenKey := false

	flush := func() {
		if current != "" {
			if rec, ok := uninstallRecord(current, values); ok {
				records = append(records, rec)
			}
		}
		current = ""
		values = make(map[string]string)
	}

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "HKEY_") {
			flush()
			seenKey = true
			// The last path component is the uninstall entry's stable id.
			current = trimmed[strings.LastIndex(trimmed, "\\")+1:]
			continue
		}
		if name, value, ok := splitRegistryValueLine(line); ok && current != "" {
			values[name] = value
		}
	}
	flush()

	if !seenKey {
		return nil, nil, fmt.Errorf("%w: no registry keys in output", ErrMalformedSource)
	}
	return records, nil, nil
}

// splitRegistryValueLine splits an indented "Name    REG_TYPE    Value" line
// as printed by reg query. The value part may be empty.
func splitRegistryValueLine(line string) (string, string, bool) {
	idx := strings.Index(line, "REG_")
	if idx <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:idx])
	if name == "" {
		return "", "", false
	}
	rest := line[idx:]
	end := strings.IndexAny(rest, " \t")
	if end < 0 {
		return name, "", true
	}
	return name, strings.TrimSpace(rest[end:]), true
}

func parseRegistryHive(raw []byte) ([]models.Record, []models.Diagnostic, error) {
	tmpFile, err := os.CreateTemp("", "unisbom_hive_*.dat")
	if err != nil {
		return nil, nil, fmt.Errorf("staging registry hive: %w", err)
	}
	defer func() { _ = os.Remove(tmpFile.Name()) }()

	if _, err := tmpFile.Write(raw); err != nil {
		_ = tmpFile.Close()
		return nil, nil, fmt.Errorf("staging registry hive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, nil, fmt.Errorf("staging registry hive: %w", err)
	}

	opener := registry.NewOfflineOpener(tmpFile.Name())
	hive, err := opener.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	defer func() { _ = hive.Close() }()

	records := make([]models.Record, 0)
	for _, path := range uninstallPaths {
		key, err := hive.OpenKey("", path)
		if err != nil {
			continue
		}
		subkeys, err := key.Subkeys()
		if err != nil {
			continue
		}
		for _, sub := range subkeys {
			values := make(map[string]string)
			for _, name := range uninstallValueNames {
				if val, ok := hiveValueString(sub, name); ok {
					values[name] = val
				}
			}
			if rec, ok := uninstallRecord(sub.Name(), values); ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil, nil
}

func hiveValueString(key registry.Key, name string) (string, bool) {
	val, err := key.ValueString(name)
	if err != nil {
		return "", false
	}
	return strings.TrimRight(val, "\x00"), true
}

// uninstallRecord maps one uninstall subkey's values to a record.
func uninstallRecord(keyName string, values map[string]string) (models.Record, bool) {
	name := values["DisplayName"]
	if name == "" {
		return models.Record{}, false
	}
	version := values["DisplayVersion"]
	if version == "" {
		version = values["Version"]
	}
	var publishers []string
	if p := values["Publisher"]; p != "" {
		publishers = []string{p}
	}
	return models.Record{
		Kind:       models.KindApplication,
		Name:       name,
		ID:         keyName,
		Version:    version,
		Path:       firstNonEmpty(values["InstallLocation"], values["InstallSource"], values["BundleCachePath"]),
		Modified:   parseInstallDate(values["InstallDate"]),
		Publishers: publishers,
	}.Normalized(), true
}

// parseInstallDate parses the uninstall tree's InstallDate value, recorded
// as yyyymmdd and occasionally yyyy-mm-dd.
func parseInstallDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse("20060102", value); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse("2006-01-02", value); err == nil {
		return ts.UTC()
	}
	return time.Time{}
}

package parse

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/unisbom/unisbom/pkg/models"
)

const registryFixture = `
HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall

HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\7-Zip
    DisplayName    REG_SZ    7-Zip 22.01 (x64)
    DisplayVersion    REG_SZ    22.01
    InstallLocation    REG_SZ    C:\Program Files\7-Zip\
    Publisher    REG_SZ    Igor Pavlov
    InstallDate    REG_SZ    20220715
    NoModify    REG_DWORD    0x1

HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\{26A24AE4-039D-4CA4-87B4-2F32180181F0}
    DisplayName    REG_SZ    Java 8 Update 333
    Version    REG_SZ    8.0.3330.2
    InstallSource    REG_SZ    C:\Users\admin\Downloads\jre-8u333\
    Publisher    REG_SZ    Oracle Corporation

HKEY_LOCAL_MACHINE\SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall\Orphaned
    UninstallString    REG_SZ    C:\leftover\uninstall.exe
`

func TestParseRegistryApps(t *testing.T) {
	records, diags, err := ParseRegistryApps([]byte(registryFixture))
	if err != nil {
		t.Fatalf("Failed to parse registry output: %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("Keys without a display name are skipped silently, got %+v", diags)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d: %+v", len(records), records)
	}

	zip := records[0]
	if zip.Kind != models.KindApplication || zip.ID != "7-Zip" {
		t.Errorf("Unexpected first record: %+v", zip)
	}
	if zip.Name != "7-Zip 22.01 (x64)" {
		t.Errorf("Display name should keep its embedded spaces, got %q", zip.Name)
	}
	if zip.Version != "22.01" {
		t.Errorf("Expected version 22.01, got %q", zip.Version)
	}
	if zip.Path != `C:\Program Files\7-Zip\` {
		t.Errorf("Unexpected install path %q", zip.Path)
	}
	if !reflect.DeepEqual(zip.Publishers, []string{"Igor Pavlov"}) {
		t.Errorf("Unexpected publishers %v", zip.Publishers)
	}
	if want := time.Date(2022, 7, 15, 0, 0, 0, 0, time.UTC); !zip.Modified.Equal(want) {
		t.Errorf("InstallDate should parse to %v, got %v", want, zip.Modified)
	}

	java := records[1]
	if java.ID != "{26A24AE4-039D-4CA4-87B4-2F32180181F0}" {
		t.Errorf("Record id should be the last key path component, got %q", java.ID)
	}
	if java.Version != "8.0.3330.2" {
		t.Errorf("Version should fall back to the Version value, got %q", java.Version)
	}
	if java.Path != `C:\Users\admin\Downloads\jre-8u333\` {
		t.Errorf("Path should fall back to InstallSource, got %q", java.Path)
	}
	if !java.Modified.Equal(models.Epoch) {
		t.Errorf("Missing InstallDate should yield the epoch sentinel, got %v", java.Modified)
	}
}

func TestParseRegistryAppsNoKeys(t *testing.T) {
	if _, _, err := ParseRegistryApps([]byte("complete nonsense\nmore nonsense\n")); !errors.Is(err, ErrMalformedSource) {
		t.Errorf("Expected ErrMalformedSource without registry keys, got %v", err)
	}
}

func TestParseRegistryAppsEmpty(t *testing.T) {
	if _, _, err := ParseRegistryApps(nil); !errors.Is(err, ErrMalformedSource) {
		t.Errorf("Expected ErrMalformedSource for empty input, got %v", err)
	}
}

func TestParseRegistryAppsTruncatedHive(t *testing.T) {
	raw := append([]byte("regf"), make([]byte, 32)...)
	if _, _, err := ParseRegistryApps(raw); !errors.Is(err, ErrMalformedSource) {
		t.Errorf("Expected ErrMalformedSource for a truncated hive, got %v", err)
	}
}

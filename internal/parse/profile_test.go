package parse

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/unisbom/unisbom/pkg/models"
)

const profileFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<array>
	<dict>
		<key>_dataType</key>
		<string>SPSoftwareDataType</string>
		<key>_items</key>
		<array>
			<dict>
				<key>_name</key>
				<string>os_overview</string>
				<key>kernel_version</key>
				<string>Darwin 21.5.0</string>
				<key>os_version</key>
				<string>macOS 12.4 (21F79)</string>
			</dict>
		</array>
	</dict>
	<dict>
		<key>_dataType</key>
		<string>SPApplicationsDataType</string>
		<key>_items</key>
		<array>
			<dict>
				<key>_name</key>
				<string>Google Drive</string>
				<key>lastModified</key>
				<date>2022-06-01T03:12:11Z</date>
				<key>obtained_from</key>
				<string>identified_developer</string>
				<key>path</key>
				<string>/Applications/Google Drive.app</string>
				<key>signed_by</key>
				<array>
					<string>Developer ID Application: Google LLC (EQHXZ8M8AV)</string>
					<string>Developer ID Certification Authority</string>
					<string>Apple Root CA</string>
				</array>
				<key>version</key>
				<string>62.0</string>
			</dict>
			<dict>
				<key>path</key>
				<string>/Applications/Broken.app</string>
				<key>version</key>
				<string>1.0</string>
			</dict>
		</array>
	</dict>
	<dict>
		<key>_dataType</key>
		<string>SPExtensionsDataType</string>
		<key>_items</key>
		<array>
			<dict>
				<key>_name</key>
				<string>AppleThunderboltNHI</string>
				<key>spext_bundleid</key>
				<string>com.apple.driver.AppleThunderboltNHI</string>
				<key>spext_lastModified</key>
				<date>2022-05-20T10:00:00Z</date>
				<key>spext_path</key>
				<string>/System/Library/Extensions/AppleThunderboltNHI.kext</string>
				<key>spext_signed_by</key>
				<string>Software Signing</string>
				<key>spext_version</key>
				<string>7.2.8</string>
			</dict>
			<dict>
				<key>_name</key>
				<string>orphan</string>
			</dict>
		</array>
	</dict>
</array>
</plist>
`

func TestParseProfile(t *testing.T) {
	records, diags, err := ParseProfile([]byte(profileFixture))
	if err != nil {
		t.Fatalf("Failed to parse profile output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d: %+v", len(records), records)
	}
	if len(diags) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d: %+v", len(diags), diags)
	}

	osRec := records[0]
	if osRec.Kind != models.KindOS {
		t.Errorf("Expected OS record first, got %q", osRec.Kind)
	}
	if osRec.Name != "macOS" || osRec.ID != "macOS" {
		t.Errorf("Unexpected OS identity: %q / %q", osRec.Name, osRec.ID)
	}
	if osRec.Version != "12.4 (21F79)" {
		t.Errorf("OS version should drop the product prefix, got %q", osRec.Version)
	}
	if osRec.Path != "/" {
		t.Errorf("Expected OS path /, got %q", osRec.Path)
	}
	if len(osRec.Publishers) != 2 || osRec.Publishers[1] != "Apple Root CA" {
		t.Errorf("Unexpected OS signing chain: %v", osRec.Publishers)
	}
	if !osRec.Modified.Equal(models.Epoch) {
		t.Errorf("OS record has no timestamp source, expected epoch, got %v", osRec.Modified)
	}

	app := records[1]
	if app.Kind != models.KindApplication || app.ID != "Google Drive" {
		t.Errorf("Unexpected application record: %+v", app)
	}
	if app.Version != "62.0" {
		t.Errorf("Expected version 62.0, got %q", app.Version)
	}
	if app.Path != "/Applications/Google Drive.app" {
		t.Errorf("Unexpected application path %q", app.Path)
	}
	wantChain := []string{
		"Developer ID Application: Google LLC (EQHXZ8M8AV)",
		"Developer ID Certification Authority",
		"Apple Root CA",
	}
	if !reflect.DeepEqual(app.Publishers, wantChain) {
		t.Errorf("Signing chain order must be preserved, got %v", app.Publishers)
	}
	wantMod := time.Date(2022, 6, 1, 3, 12, 11, 0, time.UTC)
	if !app.Modified.Equal(wantMod) {
		t.Errorf("Expected lastModified %v, got %v", wantMod, app.Modified)
	}

	ext := records[2]
	if ext.Kind != models.KindDriver {
		t.Errorf("Extensions should map to driver records, got %q", ext.Kind)
	}
	if ext.ID != "com.apple.driver.AppleThunderboltNHI" || ext.Name != "AppleThunderboltNHI" {
		t.Errorf("Unexpected extension identity: %q / %q", ext.Name, ext.ID)
	}
	if ext.Version != "7.2.8" {
		t.Errorf("Extension version should fall back to spext_version, got %q", ext.Version)
	}
	if !reflect.DeepEqual(ext.Publishers, []string{"Software Signing"}) {
		t.Errorf("Scalar signer should coerce to a single element list, got %v", ext.Publishers)
	}

	if diags[0].Source != SourceProfile || diags[1].Source != SourceProfile {
		t.Errorf("Diagnostics should carry the profile source, got %+v", diags)
	}
}

func TestParseProfileEmpty(t *testing.T) {
	for _, raw := range [][]byte{nil, []byte(""), []byte("   \n\t")} {
		if _, _, err := ParseProfile(raw); !errors.Is(err, ErrMalformedSource) {
			t.Errorf("Expected ErrMalformedSource for %q, got %v", raw, err)
		}
	}
}

func TestParseProfileGarbage(t *testing.T) {
	if _, _, err := ParseProfile([]byte{0x00, 0x01, 0x02, 0xff, 0xfe}); !errors.Is(err, ErrMalformedSource) {
		t.Errorf("Expected ErrMalformedSource for binary junk, got %v", err)
	}
}

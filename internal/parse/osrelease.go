package parse

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/unisbom/unisbom/pkg/models"
)

// ParseOSRelease parses an os-release file into the host's OS record. The
// version string prefers PRETTY_NAME and falls back to NAME plus VERSION_ID.
func ParseOSRelease(raw []byte) (models.Record, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.Record{}, fmt.Errorf("%w: empty os-release", ErrMalformedSource)
	}

	fields := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = strings.Trim(strings.TrimSpace(parts[1]), `"`)
	}

	version := fields["PRETTY_NAME"]
	if version == "" && fields["NAME"] != "" {
		version = strings.TrimSpace(fields["NAME"] + " " + fields["VERSION_ID"])
	}
	if version == "" {
		return models.Record{}, fmt.Errorf("%w: os-release has no PRETTY_NAME or NAME", ErrMalformedSource)
	}

	return models.Record{
		Kind:    models.KindOS,
		Name:    "Linux",
		ID:      "Linux",
		Version: version,
		Path:    "/",
	}.Normalized(), nil
}

// Package source provides the raw source adapters feeding the collectors.
//
// An adapter returns the unparsed output of one inventory category and knows
// nothing about its format. Live adapters shell out to host tools or read
// host files; snapshot adapters read the same categories from a saved dump
// directory.
package source

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Source returns the raw bytes of one inventory category.
type Source interface {
	// Name identifies the category; it doubles as the file name inside a
	// snapshot directory.
	Name() string
	Fetch() ([]byte, error)
}

type execSource struct {
	name string
	bin  string
	args []string
}

// Exec returns a source that runs bin with args and yields its stdout.
func Exec(name, bin string, args ...string) Source {
	return &execSource{name: name, bin: bin, args: args}
}

func (s *execSource) Name() string { return s.name }

func (s *execSource) Fetch() ([]byte, error) {
	output, err := exec.Command(s.bin, s.args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, fmt.Errorf("could not execute %s: %v: %s", s.bin, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("could not execute %s: %w", s.bin, err)
	}
	return output, nil
}

type fileSource struct {
	name       string
	candidates []string
}

// File returns a source that reads the first accessible candidate path.
func File(name string, candidates ...string) Source {
	return &fileSource{name: name, candidates: candidates}
}

func (s *fileSource) Name() string { return s.name }

func (s *fileSource) Fetch() ([]byte, error) {
	var lastErr error
	for _, path := range s.candidates {
		//nolint:gosec // G304: candidate paths are fixed inventory locations
		data, err := os.ReadFile(path)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = os.ErrNotExist
	}
	return nil, fmt.Errorf("no readable candidate for %s: %w", s.name, lastErr)
}

type joinSource struct {
	name    string
	sources []Source
}

// Join concatenates the outputs of several sources under one name. Children
// that fail are skipped; Join fails only when every child does.
func Join(name string, sources ...Source) Source {
	return &joinSource{name: name, sources: sources}
}

func (s *joinSource) Name() string { return s.name }

func (s *joinSource) Fetch() ([]byte, error) {
	parts := make([][]byte, 0, len(s.sources))
	var lastErr error
	for _, src := range s.sources {
		data, err := src.Fetch()
		if err != nil {
			lastErr = err
			continue
		}
		parts = append(parts, data)
	}
	if len(parts) == 0 {
		if lastErr == nil {
			lastErr = errors.New("no sources")
		}
		return nil, fmt.Errorf("%s: %w", s.name, lastErr)
	}
	return joinLines(parts), nil
}

func joinLines(parts [][]byte) []byte {
	out := make([]byte, 0)
	for i, part := range parts {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, part...)
	}
	return out
}

type snapshotSource struct {
	dir  string
	name string
}

// Snapshot returns a source that reads the category's dump file from dir.
func Snapshot(dir, name string) Source {
	return &snapshotSource{dir: dir, name: name}
}

func (s *snapshotSource) Name() string { return s.name }

func (s *snapshotSource) Fetch() ([]byte, error) {
	//nolint:gosec // G304: path is rooted in the user-supplied snapshot dir
	data, err := os.ReadFile(filepath.Join(s.dir, s.name))
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", s.name, err)
	}
	return data, nil
}

type staticSource struct {
	name string
	data []byte
}

// Static returns a fixed-content source, mainly for tests.
func Static(name string, data []byte) Source {
	return &staticSource{name: name, data: data}
}

func (s *staticSource) Name() string { return s.name }

func (s *staticSource) Fetch() ([]byte, error) {
	return s.data, nil
}

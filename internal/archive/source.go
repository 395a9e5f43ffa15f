package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Source is a filesystem-backed document source over an expanded archive
// directory. Document identifiers are file paths relative to nothing in
// particular; they only need to be stable within one run.
type Source struct {
	dir string
}

// NewSource creates a Source reading XML documents from dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir}
}

// Documents lists every XML file beneath the source directory.
func (s *Source) Documents(_ context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			ids = append(ids, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.dir, err)
	}
	return ids, nil
}

// Load reads one document's bytes.
func (s *Source) Load(_ context.Context, id string) ([]byte, error) {
	data, err := os.ReadFile(id)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	return data, nil
}

package document

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exporter saves documents under a directory.
type Exporter struct {
	Dir string
}

func NewExporter(dir string) *Exporter { return &Exporter{Dir: dir} }

// Save writes doc and returns the path it was written to. An existing
// file with the same name is overwritten.
func (e *Exporter) Save(doc Document) (string, error) {
	if doc.Name == "" || filepath.Base(doc.Name) != doc.Name {
		return "", fmt.Errorf("export: invalid document name %q", doc.Name)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	path := filepath.Join(e.Dir, doc.Name)
	if err := os.WriteFile(path, doc.Body, 0o644); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	return path, nil
}

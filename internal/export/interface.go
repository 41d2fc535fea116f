// Package export writes segment manifests in several formats.
package export

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// Exporter defines the interface for all manifest formats
type Exporter interface {
	Export(m *internal.Manifest, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
func NewExporter(format string) (Exporter, error) {
	switch format {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// WriteFile exports m to path, creating parent directories
func WriteFile(e Exporter, m *internal.Manifest, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &internal.ExportError{Format: e.Extension(), Path: path, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: e.Extension(), Path: path, Err: err}
	}

	if err := e.Export(m, f); err != nil {
		_ = f.Close()
		return &internal.ExportError{Format: e.Extension(), Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &internal.ExportError{Format: e.Extension(), Path: path, Err: err}
	}
	return nil
}

// encodable returns a copy of m that every encoder accepts: an unknown
// duration becomes 0 and non-finite markers are dropped.
func encodable(m *internal.Manifest) *internal.Manifest {
	out := *m
	if !finite(out.DurationS) {
		out.DurationS = 0
	}
	out.Markers = make([]float64, 0, len(m.Markers))
	for _, t := range m.Markers {
		if finite(t) {
			out.Markers = append(out.Markers, t)
		}
	}
	return &out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

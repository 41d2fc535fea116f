package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// JSONLExporter exports manifests in JSONL format (one segment per line)
type JSONLExporter struct{}

// Export exports a manifest to JSONL format
func (e *JSONLExporter) Export(m *internal.Manifest, w io.Writer) error {
	enc := json.NewEncoder(w)

	for i, seg := range m.Segments {
		obj := map[string]interface{}{
			"index":    i,
			"start_s":  seg.StartS,
			"end_s":    seg.EndS,
			"length_s": seg.Length(),
			"filename": seg.Filename,
		}

		if m.ProjectID != "" {
			obj["project_id"] = m.ProjectID
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode segment: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

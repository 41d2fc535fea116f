package export

import (
	"encoding/json"
	"io"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// JSONExporter exports manifests in JSON format (pretty-printed)
type JSONExporter struct{}

// Export exports a manifest to JSON format
func (e *JSONExporter) Export(m *internal.Manifest, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(encodable(m))
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

package export

import (
	"io"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports manifests in YAML format
type YAMLExporter struct{}

// Export exports a manifest to YAML format
func (e *YAMLExporter) Export(m *internal.Manifest, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(encodable(m))
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

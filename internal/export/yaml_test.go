package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"gopkg.in/yaml.v3"
)

func TestYAMLExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		manifest *internal.Manifest
		wantSegs int
		wantErr  bool
	}{
		{
			name:     "basic manifest",
			manifest: internal.CreateTestManifest(),
			wantSegs: 3,
		},
		{
			name:     "empty manifest",
			manifest: &internal.Manifest{},
			wantSegs: 0,
		},
		{
			name: "manifest with outputs",
			manifest: &internal.Manifest{
				ProjectID:   "p1",
				DurationS:   math.Inf(1),
				BitrateKbps: 128,
				Items: []internal.ExportItem{
					{Filename: "intro.mp3", OutputPath: "/data/projects/p1/outputs/intro.mp3"},
				},
			},
			wantSegs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &YAMLExporter{}

			err := exporter.Export(tt.manifest, &buf)
			if (err != nil) != tt.wantErr {
				t.Errorf("YAMLExporter.Export() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			var decoded internal.Manifest
			if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("output is not valid YAML: %v", err)
			}
			if len(decoded.Segments) != tt.wantSegs {
				t.Errorf("segments = %d, want %d", len(decoded.Segments), tt.wantSegs)
			}
			if decoded.ProjectID != tt.manifest.ProjectID {
				t.Errorf("project_id = %q, want %q", decoded.ProjectID, tt.manifest.ProjectID)
			}
		})
	}
}

func TestYAMLExporter_Keys(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(internal.CreateTestManifest(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{"start_s:", "end_s:", "filename: segment_01.mp3", "bitrate_kbps: 192"} {
		if !strings.Contains(out, want) {
			t.Errorf("YAML missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "key:") {
		t.Errorf("YAML should not contain segment keys:\n%s", out)
	}
}

func TestYAMLExporter_Extension(t *testing.T) {
	if got := (&YAMLExporter{}).Extension(); got != "yaml" {
		t.Errorf("Extension() = %v, want yaml", got)
	}
}

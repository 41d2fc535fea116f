package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name     string
		manifest *internal.Manifest
		want     []string
		notWant  []string
	}{
		{
			name:     "basic manifest",
			manifest: internal.CreateTestManifest(),
			want: []string{
				"# Segments of take.mp3",
				"**Duration:** 00:10",
				"**Bitrate:** 192 kbps",
				"**Segments:** 3",
				"| 1 | 00:00 | 00:03 | 3.0s | segment_01.mp3 |",
				"| 3 | 00:07 | 00:10 | 3.0s | segment_03.mp3 |",
			},
			notWant: []string{"## Outputs"},
		},
		{
			name:     "empty manifest",
			manifest: &internal.Manifest{},
			want:     []string{"# Segments of untitled", "_No segments._"},
			notWant:  []string{"| # |"},
		},
		{
			name: "escapes pipes in filenames",
			manifest: &internal.Manifest{
				ProjectID: "p1",
				DurationS: 5,
				Segments:  []segment.Segment{{StartS: 0, EndS: 5, Filename: "a|b.mp3"}},
				Items:     []internal.ExportItem{{Filename: "a|b.mp3", OutputPath: "/out/a|b.mp3"}},
			},
			want: []string{
				"# Segments of p1",
				"**Project:** p1",
				`a\|b.mp3 |`,
				"## Outputs",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.manifest, &buf); err != nil {
				t.Fatalf("MarkdownExporter.Export() error = %v", err)
			}
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output should not contain %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.mp3", "plain.mp3"},
		{"a|b", `a\|b`},
		{"**bold**", `\*\*bold\*\*`},
		{"__u__", `\_\_u\_\_`},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	if got := (&MarkdownExporter{}).Extension(); got != "md" {
		t.Errorf("Extension() = %v, want md", got)
	}
}

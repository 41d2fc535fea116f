package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
)

// MarkdownExporter exports manifests as a Markdown table
type MarkdownExporter struct{}

// Export exports a manifest to Markdown format
func (e *MarkdownExporter) Export(m *internal.Manifest, w io.Writer) error {
	title := m.Source
	if title == "" {
		title = m.ProjectID
	}
	if title == "" {
		title = "untitled"
	}
	_, _ = fmt.Fprintf(w, "# Segments of %s\n\n", escapeMarkdown(title))

	if m.ProjectID != "" {
		_, _ = fmt.Fprintf(w, "**Project:** %s  \n", m.ProjectID)
	}
	_, _ = fmt.Fprintf(w, "**Duration:** %s  \n", clock.Format(m.DurationS))
	if m.BitrateKbps > 0 {
		_, _ = fmt.Fprintf(w, "**Bitrate:** %d kbps  \n", m.BitrateKbps)
	}
	_, _ = fmt.Fprintf(w, "**Segments:** %d\n\n", len(m.Segments))

	if len(m.Segments) == 0 {
		_, _ = fmt.Fprintf(w, "_No segments._\n")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| # | Start | End | Length | Filename |\n")
	_, _ = fmt.Fprintf(w, "|---|---|---|---|---|\n")
	for i, seg := range m.Segments {
		_, _ = fmt.Fprintf(w, "| %d | %s | %s | %.1fs | %s |\n",
			i+1,
			clock.Format(seg.StartS),
			clock.Format(seg.EndS),
			seg.Length(),
			escapeMarkdown(seg.Filename),
		)
	}

	if len(m.Items) > 0 {
		_, _ = fmt.Fprintf(w, "\n## Outputs\n\n")
		for _, item := range m.Items {
			_, _ = fmt.Fprintf(w, "- `%s`\n", item.OutputPath)
		}
	}

	return nil
}

// escapeMarkdown escapes characters that break table cells or emphasis
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

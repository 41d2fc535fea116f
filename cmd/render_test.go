package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{"empty", nil, 10, ""},
		{"zero width", []float64{1}, 0, ""},
		{"one per value", []float64{0, 1, 0.5, 1}, 4, "▁█▄█"},
		{"resampled peaks", []float64{0, 1, 0.5, 1}, 2, "██"},
		{"wider than data", []float64{1, 0}, 10, "█▁"},
		{"silence", []float64{0, 0, 0}, 3, "▁▁▁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderSegments(t *testing.T) {
	var buf bytes.Buffer
	renderSegments(&buf, nil)
	if !strings.Contains(buf.String(), "No segments (add markers)") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	renderSegments(&buf, segment.Build([]float64{65}, 130))
	out := buf.String()
	for _, want := range []string{"2 segment(s)", "01:05", "02:10", "65.0s", "segment_02.mp3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkers(t *testing.T) {
	var buf bytes.Buffer
	renderMarkers(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("no markers should print nothing, got %q", buf.String())
	}
	renderMarkers(&buf, []float64{3, 61.9})
	if got := buf.String(); got != "Markers: 00:03  01:01\n" {
		t.Errorf("renderMarkers() = %q", got)
	}
}

func TestTermRenderer(t *testing.T) {
	ready := session.View{
		State:    session.StateReady,
		Markers:  []float64{5},
		Segments: segment.Build([]float64{5}, 10),
	}

	t.Run("tables off", func(t *testing.T) {
		var out, errOut bytes.Buffer
		r := newTermRenderer(&out, &errOut, false)
		r.Render(ready)
		if out.Len() != 0 {
			t.Errorf("rendered without tables: %q", out.String())
		}
	})

	t.Run("renders on change only", func(t *testing.T) {
		var out, errOut bytes.Buffer
		r := newTermRenderer(&out, &errOut, true)
		r.Render(session.View{State: session.StateLoading})
		r.Render(ready)
		r.Render(ready)
		if n := strings.Count(out.String(), "2 segment(s)"); n != 1 {
			t.Errorf("table rendered %d times, want 1:\n%s", n, out.String())
		}
	})

	t.Run("notices", func(t *testing.T) {
		var out, errOut bytes.Buffer
		r := newTermRenderer(&out, &errOut, false)
		r.Notify(session.Notice{Level: session.NoticeInfo, Text: "hello"})
		r.Notify(session.Notice{Level: session.NoticeWarning, Text: "careful"})
		r.Notify(session.Notice{Level: session.NoticeError, Text: "broken"})
		if !strings.Contains(out.String(), "hello") {
			t.Errorf("stdout = %q", out.String())
		}
		if !strings.Contains(errOut.String(), "WARNING: careful") || !strings.Contains(errOut.String(), "broken") {
			t.Errorf("stderr = %q", errOut.String())
		}
	})
}

package cmd

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// renderSegments writes the segment rows as an aligned table
func renderSegments(w io.Writer, segs []segment.Segment) {
	if len(segs) == 0 {
		_, _ = fmt.Fprintln(w, headerStyle.Render("No segments (add markers)"))
		return
	}

	_, _ = fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d segment(s)", len(segs))))
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(tw, titleStyle.Render("Key")+"\t"+titleStyle.Render("Start")+"\t"+
		titleStyle.Render("End")+"\t"+titleStyle.Render("Length")+"\t"+titleStyle.Render("Filename")+"\t")
	for _, s := range segs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(strconv.Itoa(s.Key)),
			clock.Format(s.StartS),
			clock.Format(s.EndS),
			dateStyle.Render(fmt.Sprintf("%.1fs", s.Length())),
			s.Filename,
		)
	}
	_ = tw.Flush()
}

// renderMarkers writes the marker positions on one line
func renderMarkers(w io.Writer, markers []float64) {
	if len(markers) == 0 {
		return
	}
	parts := make([]string, len(markers))
	for i, m := range markers {
		parts[i] = clock.Format(m)
	}
	_, _ = fmt.Fprintf(w, "Markers: %s\n", strings.Join(parts, "  "))
}

// sparkline renders values as a row of block characters, resampled to width
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if width > len(values) {
		width = len(values)
	}

	peak := 0.0
	for _, v := range values {
		if v > peak && !math.IsInf(v, 0) {
			peak = v
		}
	}

	var b strings.Builder
	for i := 0; i < width; i++ {
		lo := i * len(values) / width
		hi := (i + 1) * len(values) / width
		bucket := 0.0
		for _, v := range values[lo:hi] {
			if v > bucket && !math.IsInf(v, 0) {
				bucket = v
			}
		}
		level := 0
		if peak > 0 {
			level = int(bucket / peak * float64(len(sparkBlocks)-1))
		}
		b.WriteRune(sparkBlocks[level])
	}
	return waveStyle.Render(b.String())
}

// termRenderer prints controller notices and, when tables is set, the
// segment table whenever the segment list changes.
type termRenderer struct {
	printer *internal.Printer
	out     io.Writer
	tables  bool

	mu   sync.Mutex
	last string
}

func newTermRenderer(out, errOut io.Writer, tables bool) *termRenderer {
	return &termRenderer{
		printer: internal.NewPrinter(out, errOut),
		out:     out,
		tables:  tables,
		last:    "-",
	}
}

func (r *termRenderer) Notify(n session.Notice) {
	switch n.Level {
	case session.NoticeSuccess:
		r.printer.Success(n.Text)
	case session.NoticeWarning:
		r.printer.Warning(n.Text)
	case session.NoticeError:
		r.printer.Error(n.Text)
	default:
		r.printer.Info(n.Text)
	}
}

func (r *termRenderer) Render(v session.View) {
	if !r.tables || v.State != session.StateReady {
		return
	}
	sig := segmentsSignature(v.Segments)

	r.mu.Lock()
	defer r.mu.Unlock()
	if sig == r.last {
		return
	}
	r.last = sig
	renderMarkers(r.out, v.Markers)
	renderSegments(r.out, v.Segments)
}

func segmentsSignature(segs []segment.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		fmt.Fprintf(&b, "%d:%g:%g:%s;", s.Key, s.StartS, s.EndS, s.Filename)
	}
	return b.String()
}

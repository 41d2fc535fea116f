package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/clock"
	"github.com/ChristianPRO1982/audio-splitter/internal/export"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
	"github.com/spf13/cobra"
)

var (
	segmentsDuration string
	segmentsMarkers  []string
	segmentsNames    []string
	segmentsFormat   string
)

// segmentsCmd previews the segments a marker list produces, without a backend
var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Preview the segments produced by a set of markers",
	Long: `Compute the segments between markers for a recording of the given duration.

Times accept seconds (83.5), M:SS (1:23.5) or H:MM:SS (1:02:03). Segments
shorter than 0.2s are dropped.

Examples:
  audio-splitter segments --duration 10:00 -m 2:30 -m 6:00
  audio-splitter segments --duration 600 -m 150 --name 1=intro --format yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if segmentsDuration == "" {
			return fmt.Errorf("--duration is required")
		}
		duration, err := clock.Parse(segmentsDuration)
		if err != nil {
			return fmt.Errorf("invalid --duration: %w", err)
		}
		markers, err := parseMarkers(segmentsMarkers)
		if err != nil {
			return err
		}
		names, err := parseNames(segmentsNames)
		if err != nil {
			return err
		}

		s, err := localSession(duration, markers)
		if err != nil {
			return err
		}
		if err := applyNames(s, names); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if segmentsFormat == "table" {
			renderMarkers(out, s.Markers())
			renderSegments(out, s.Segments())
			return nil
		}

		exporter, err := export.NewExporter(segmentsFormat)
		if err != nil {
			return err
		}
		m := &internal.Manifest{
			DurationS:   duration,
			BitrateKbps: cfg.Client.BitrateKbps,
			Markers:     s.Markers(),
			Segments:    s.Segments(),
		}
		return exporter.Export(m, out)
	},
}

// localSession runs a session through upload and load without a backend and
// places markers on it.
func localSession(duration float64, markers []float64) (*session.Session, error) {
	s := session.New()
	if err := s.BeginUpload(); err != nil {
		return nil, err
	}
	if err := s.UploadSucceeded("local"); err != nil {
		return nil, err
	}
	if err := s.MediaReady(duration); err != nil {
		return nil, err
	}
	for _, m := range markers {
		if err := s.AddMarker(m); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// applyNames renames segments by key
func applyNames(s *session.Session, names map[int]string) error {
	keys := make([]int, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, key := range keys {
		i := segment.IndexOfKey(s.Segments(), key)
		if i < 0 {
			return fmt.Errorf("%w: %d", session.ErrUnknownSegment, key)
		}
		if err := s.EditFilename(i, names[key]); err != nil {
			return err
		}
	}
	return nil
}

func parseMarkers(values []string) ([]float64, error) {
	markers := make([]float64, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			t, err := clock.Parse(part)
			if err != nil {
				return nil, fmt.Errorf("invalid marker %q: %w", part, err)
			}
			markers = append(markers, t)
		}
	}
	return markers, nil
}

// parseNames parses KEY=NAME pairs
func parseNames(values []string) (map[int]string, error) {
	names := make(map[int]string, len(values))
	for _, v := range values {
		k, name, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --name %q (want KEY=NAME)", v)
		}
		key, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || key < 1 {
			return nil, fmt.Errorf("invalid --name %q: key must be a positive segment number", v)
		}
		names[key] = strings.TrimSpace(name)
	}
	return names, nil
}

func init() {
	rootCmd.AddCommand(segmentsCmd)
	segmentsCmd.Flags().StringVar(&segmentsDuration, "duration", "", "Recording duration (seconds, M:SS or H:MM:SS)")
	segmentsCmd.Flags().StringArrayVarP(&segmentsMarkers, "marker", "m", nil, "Marker position (repeatable, or comma separated)")
	segmentsCmd.Flags().StringArrayVar(&segmentsNames, "name", nil, "Segment filename as KEY=NAME (repeatable)")
	segmentsCmd.Flags().StringVarP(&segmentsFormat, "format", "f", "table", "Output format (table, json, jsonl, yaml, md)")
}

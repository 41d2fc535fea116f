package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/export"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
	"github.com/spf13/cobra"
)

var (
	exportMarkers  []string
	exportNames    []string
	exportBitrate  int
	exportManifest string
)

// exportCmd uploads a recording, places markers and exports the segments
var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Upload a recording and export its segments as MP3",
	Long: `Upload a recording to the backend, split it at the given markers and
export every segment as an MP3.

Segments are numbered from 1 in the order they appear; use --name to give a
segment its own filename. The backend writes the files to the project's
outputs folder and prints where they are.

Examples:
  audio-splitter export set.wav -m 3:10 -m 7:45
  audio-splitter export set.wav -m 190,465 --name 1=intro --name 3=outro
  audio-splitter export set.wav -m 3:10 --bitrate 320 --manifest cuts.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("cannot read %s: %w", path, err)
		}
		markers, err := parseMarkers(exportMarkers)
		if err != nil {
			return err
		}
		names, err := parseNames(exportNames)
		if err != nil {
			return err
		}
		bitrate := exportBitrate
		if bitrate == 0 {
			bitrate = cfg.Client.BitrateKbps
		}
		if bitrate < internal.MinBitrateKbps || bitrate > internal.MaxBitrateKbps {
			return fmt.Errorf("--bitrate must be between %d and %d", internal.MinBitrateKbps, internal.MaxBitrateKbps)
		}
		var manifestExporter export.Exporter
		if exportManifest != "" {
			manifestExporter, err = export.NewExporter(strings.TrimPrefix(filepath.Ext(exportManifest), "."))
			if err != nil {
				return fmt.Errorf("--manifest: %w", err)
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ls := startSession(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), false)
		defer ls.Stop()

		v, err := ls.upload(ctx, path)
		if err != nil {
			return err
		}
		if v.State != session.StateReady {
			return fmt.Errorf("audio did not load: %s", v.Notice.Text)
		}

		for _, t := range markers {
			if v, err = ls.mark(ctx, t); err != nil {
				return err
			}
		}
		if len(v.Markers) != len(markers) {
			return fmt.Errorf("placed %d of %d markers: %s", len(v.Markers), len(markers), v.Notice.Text)
		}

		if err := renameSegments(ctx, ls, names); err != nil {
			return err
		}
		renderSegments(ls.out, ls.ctl.View().Segments)

		v, err = ls.export(ctx, bitrate)
		if err != nil {
			return err
		}

		if manifestExporter != nil {
			m := manifestFromView(v, filepath.Base(path), bitrate)
			if err := export.WriteFile(manifestExporter, m, exportManifest); err != nil {
				return err
			}
			internal.NewPrinter(ls.out, ls.errOut).Success(fmt.Sprintf("Manifest written to %s", exportManifest))
		}
		return nil
	},
}

// renameSegments applies KEY=NAME edits in key order
func renameSegments(ctx context.Context, ls *liveSession, names map[int]string) error {
	keys := make([]int, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	view := ls.ctl.View()
	for _, key := range keys {
		if _, ok := view.Segment(key); !ok {
			return fmt.Errorf("%w: %d", session.ErrUnknownSegment, key)
		}
		ls.ctl.EditFilename(key, names[key])
	}
	return ls.sync(ctx)
}

func manifestFromView(v session.View, source string, bitrate int) *internal.Manifest {
	m := &internal.Manifest{
		ProjectID:   v.ProjectID,
		Source:      source,
		DurationS:   v.Duration,
		BitrateKbps: bitrate,
		Markers:     v.Markers,
		Segments:    v.Segments,
	}
	var resp internal.ExportResponse
	if len(v.LastExport) > 0 && json.Unmarshal(v.LastExport, &resp) == nil {
		m.Items = resp.Items
	}
	return m
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringArrayVarP(&exportMarkers, "marker", "m", nil, "Marker position (repeatable, or comma separated)")
	exportCmd.Flags().StringArrayVar(&exportNames, "name", nil, "Segment filename as KEY=NAME (repeatable)")
	exportCmd.Flags().IntVarP(&exportBitrate, "bitrate", "b", 0, "MP3 bitrate in kbps (64-320, default from config)")
	exportCmd.Flags().StringVar(&exportManifest, "manifest", "", "Also write a manifest (.json, .jsonl, .yaml or .md)")
}

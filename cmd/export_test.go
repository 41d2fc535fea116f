package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/testutil"
	"gopkg.in/yaml.v3"
)

func TestExportCommand(t *testing.T) {
	b := newBackend(t)
	dir := testutil.CreateTempDir(t)
	input := testutil.WriteFile(t, dir, "take.wav", testutil.SilentWAV(t, 1))
	manifestPath := filepath.Join(dir, "out", "cuts.yaml")

	out, _, err := runCommand(t, "", "--server", b.url,
		"export", input, "-m", "3", "-m", "0:07", "--name", "1=intro", "--manifest", manifestPath)
	if err != nil {
		t.Fatalf("Execute() error = %v\n%s", err, out)
	}

	for _, want := range []string{"3 segment(s)", "intro", "segment_02.mp3", "Manifest written to"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if n := b.enc.cutCount(); n != 3 {
		t.Errorf("backend cut %d segments, want 3", n)
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	var m internal.Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid manifest: %v\n%s", err, data)
	}
	if m.Source != "take.wav" || m.DurationS != 10 || m.BitrateKbps != internal.DefaultBitrateKbps {
		t.Errorf("manifest header = %+v", m)
	}
	if len(m.Markers) != 2 || m.Markers[0] != 3 || m.Markers[1] != 7 {
		t.Errorf("markers = %v, want [3 7]", m.Markers)
	}
	if len(m.Items) != 3 || m.Items[0].Filename != "intro.mp3" {
		t.Fatalf("items = %+v", m.Items)
	}
	if _, err := os.Stat(filepath.Join(b.paths.OutputsDir(m.ProjectID), "intro.mp3")); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestExportCommand_Bitrate(t *testing.T) {
	b := newBackend(t)
	input := testutil.WriteFile(t, testutil.CreateTempDir(t), "take.wav", testutil.SilentWAV(t, 1))
	manifestPath := filepath.Join(testutil.CreateTempDir(t), "cuts.json")

	_, _, err := runCommand(t, "", "--server", b.url, "export", input, "-b", "320", "--manifest", manifestPath)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	if !strings.Contains(string(data), `"bitrate_kbps": 320`) {
		t.Errorf("manifest = %s", data)
	}
	if n := b.enc.cutCount(); n != 1 {
		t.Errorf("backend cut %d segments, want 1 with no markers", n)
	}
}

func TestExportCommand_Errors(t *testing.T) {
	b := newBackend(t)
	dir := testutil.CreateTempDir(t)
	input := testutil.WriteFile(t, dir, "take.wav", testutil.SilentWAV(t, 1))
	noExt := testutil.WriteFile(t, dir, "take", testutil.SilentWAV(t, 1))

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{"missing file", []string{"export", filepath.Join(dir, "nope.wav")}, "cannot read"},
		{"bitrate too low", []string{"export", input, "-b", "32"}, "--bitrate"},
		{"bad marker", []string{"export", input, "-m", "soon"}, "invalid marker"},
		{"bad manifest format", []string{"export", input, "--manifest", filepath.Join(dir, "cuts.xml")}, "unsupported format"},
		{"no extension", []string{"--server", b.url, "export", noExt}, "File must have an extension"},
		{"unknown segment", []string{"--server", b.url, "export", input, "-m", "5", "--name", "4=x"}, "unknown segment"},
		{"backend down", []string{"--server", "http://127.0.0.1:1", "export", input}, "upload failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(t, "", tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
	if n := b.enc.cutCount(); n != 0 {
		t.Errorf("backend cut %d segments after failed runs", n)
	}
}

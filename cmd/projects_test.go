package cmd

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

func TestListCommand(t *testing.T) {
	b := newBackend(t)

	out, _, err := runCommand(t, "", "--server", b.url, "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "No projects found") {
		t.Errorf("empty list output = %q", out)
	}

	id := uploadFixture(t, b, "take.wav")
	out, _, err = runCommand(t, "", "--server", b.url, "list")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{"Found 1 project(s)", shortID(id), "take", "00:10", id} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestListCommand_BackendDown(t *testing.T) {
	_, _, err := runCommand(t, "", "--server", "http://127.0.0.1:1", "list")
	if err == nil || !strings.Contains(err.Error(), "failed to list projects") {
		t.Errorf("error = %v, want list failure", err)
	}
}

func TestShowCommand(t *testing.T) {
	b := newBackend(t)
	id := uploadFixture(t, b, "take.wav")

	out, _, err := runCommand(t, "", "--server", b.url, "show", id)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for _, want := range []string{id, "take.wav", "00:10", "█", "Not exported yet"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, _, err = runCommand(t, "", "--server", b.url, "show", id, "--width", "0")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Contains(out, "█") {
		t.Errorf("--width 0 still drew a waveform:\n%s", out)
	}
}

func TestShowCommand_NotFound(t *testing.T) {
	b := newBackend(t)
	_, _, err := runCommand(t, "", "--server", b.url, "show", internal.NewProjectID())
	if err == nil || !strings.Contains(err.Error(), "Project not found") {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestDisplayProject_LastExport(t *testing.T) {
	p := internal.CreateTestProject("take.mp3")
	p.LastExport = &internal.ExportRun{
		BitrateKbps: 256,
		Items: []internal.ExportItem{
			{Filename: "intro.mp3", OutputPath: "/data/projects/x/outputs/intro.mp3"},
		},
	}

	var buf bytes.Buffer
	displayProject(&buf, p, nil)
	out := buf.String()
	for _, want := range []string{"Test Band - Test Take", "Last export: 1 file(s) at 256 kbps", "intro.mp3", "/data/projects/x/outputs/intro.mp3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDeleteCommand(t *testing.T) {
	b := newBackend(t)
	first := uploadFixture(t, b, "a.wav")
	uploadFixture(t, b, "b.wav")

	out, _, err := runCommand(t, "", "--server", b.url, "delete", first)
	if err != nil {
		t.Fatalf("delete error = %v", err)
	}
	if !strings.Contains(out, "Deleted project "+first) {
		t.Errorf("output = %q", out)
	}
	if b.paths.ProjectExists(first) {
		t.Error("project files still on disk")
	}

	if _, _, err := runCommand(t, "", "--server", b.url, "delete", first); err == nil {
		t.Error("deleting twice should fail")
	}

	out, _, err = runCommand(t, "", "--server", b.url, "delete", "--all")
	if err != nil {
		t.Fatalf("delete --all error = %v", err)
	}
	if !strings.Contains(out, "All projects deleted") {
		t.Errorf("output = %q", out)
	}

	out, _, _ = runCommand(t, "", "--server", b.url, "list")
	if !strings.Contains(out, "No projects found") {
		t.Errorf("list after delete --all = %q", out)
	}
}

func TestDeleteCommand_Args(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing", []string{"delete"}},
		{"both", []string{"delete", "abc", "--all"}},
		{"two ids", []string{"delete", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := runCommand(t, "", tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestFormatCreated(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero", time.Time{}, "—"},
		{"today", now.Add(-2 * time.Hour), "Today 10:00"},
		{"this week", now.Add(-72 * time.Hour), "Wed 12:00"},
		{"this year", now.Add(-40 * 24 * time.Hour), "May 06 12:00"},
		{"old", now.Add(-400 * 24 * time.Hour), "2023-05-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatCreated(tt.t, now); got != tt.want {
				t.Errorf("formatCreated() = %q, want %q", got, tt.want)
			}
		})
	}
}

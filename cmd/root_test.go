package cmd

import (
	"strings"
	"testing"

	"github.com/ChristianPRO1982/audio-splitter/testutil"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		want    string
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "commit:",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "Quick Start",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := runCommand(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRootCommand_ConfigOverrides(t *testing.T) {
	dir := testutil.CreateTempDir(t)
	path := testutil.WriteFile(t, dir, "config.yaml", []byte("client:\n  bitrate_kbps: 256\n  server_url: http://from-file:1\n"))

	_, _, err := runCommand(t, "", "--config", path, "--server", "http://flag:2", "--data-dir", dir,
		"segments", "--duration", "10")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if cfg.Client.BitrateKbps != 256 {
		t.Errorf("bitrate = %d, want 256 from file", cfg.Client.BitrateKbps)
	}
	if cfg.Client.ServerURL != "http://flag:2" {
		t.Errorf("server = %q, want flag value", cfg.Client.ServerURL)
	}
	if cfg.Server.DataDir != dir {
		t.Errorf("data dir = %q, want %q", cfg.Server.DataDir, dir)
	}
}

func TestRootCommand_BadConfig(t *testing.T) {
	_, _, err := runCommand(t, "", "--config", "/nonexistent/config.yaml", "segments", "--duration", "10")
	if err == nil {
		t.Fatal("expected error for a missing explicit config file")
	}
}

func TestRootCommand_Subcommands(t *testing.T) {
	want := []string{"serve", "export", "edit", "segments", "list", "show", "delete", "healthcheck", "inspect"}
	have := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		have[c.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

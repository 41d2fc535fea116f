package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want :8000", cfg.Server.Addr)
	}
	if cfg.Server.MaxUploadMB != 200 {
		t.Errorf("Server.MaxUploadMB = %d, want 200", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.WaveformPoints != 2000 {
		t.Errorf("Server.WaveformPoints = %d, want 2000", cfg.Server.WaveformPoints)
	}
	if cfg.Client.BitrateKbps != 192 {
		t.Errorf("Client.BitrateKbps = %d, want 192", cfg.Client.BitrateKbps)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  addr: ":9100"
  data_dir: /srv/splitter
  max_upload_mb: 50
client:
  bitrate_kbps: 256
  request_timeout: 30s
media:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Addr != ":9100" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Server.DataDir != "/srv/splitter" {
		t.Errorf("Server.DataDir = %q", cfg.Server.DataDir)
	}
	if cfg.Server.MaxUploadMB != 50 {
		t.Errorf("Server.MaxUploadMB = %d", cfg.Server.MaxUploadMB)
	}
	if cfg.Server.WaveformPoints != 2000 {
		t.Errorf("unset field should keep default, got WaveformPoints = %d", cfg.Server.WaveformPoints)
	}
	if cfg.Client.BitrateKbps != 256 {
		t.Errorf("Client.BitrateKbps = %d", cfg.Client.BitrateKbps)
	}
	if cfg.Client.RequestTimeout != 30*time.Second {
		t.Errorf("Client.RequestTimeout = %v", cfg.Client.RequestTimeout)
	}
	if cfg.Media.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" || cfg.Media.FFprobe != "ffprobe" {
		t.Errorf("Media = %+v", cfg.Media)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  addr: \":9100\"\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("AUDIO_SPLITTER_ADDR", ":7000")
	t.Setenv("AUDIO_SPLITTER_BITRATE", "128")
	t.Setenv("AUDIO_SPLITTER_SERVER", "http://backend:8000")
	t.Setenv("AUDIO_SPLITTER_MAX_UPLOAD_MB", "not-a-number")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Client.BitrateKbps != 128 {
		t.Errorf("Client.BitrateKbps = %d, want 128", cfg.Client.BitrateKbps)
	}
	if cfg.Client.ServerURL != "http://backend:8000" {
		t.Errorf("Client.ServerURL = %q", cfg.Client.ServerURL)
	}
	if cfg.Server.MaxUploadMB != 200 {
		t.Errorf("invalid env value should be ignored, got MaxUploadMB = %d", cfg.Server.MaxUploadMB)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(badYAML, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	badBitrate := filepath.Join(dir, "bitrate.yaml")
	if err := os.WriteFile(badBitrate, []byte("client:\n  bitrate_kbps: 1000\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	tests := []struct {
		name string
		path string
	}{
		{name: "missing explicit file", path: filepath.Join(dir, "missing.yaml")},
		{name: "malformed yaml", path: badYAML},
		{name: "bitrate out of range", path: badBitrate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(tt.path); err == nil {
				t.Errorf("LoadConfig(%q) expected error", tt.path)
			}
		})
	}
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig(\"\") error = %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
	}
}

func TestServerConfig_MaxUploadBytes(t *testing.T) {
	c := ServerConfig{MaxUploadMB: 2}
	if got := c.MaxUploadBytes(); got != 2*1024*1024 {
		t.Errorf("MaxUploadBytes() = %d", got)
	}
}

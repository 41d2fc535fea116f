package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigName is looked up in the home directory when no --config is given
const DefaultConfigName = ".audio-splitter.yaml"

// Config holds runtime settings for both the server and the client commands.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	Media  MediaConfig  `yaml:"media"`

	LogLevel string `yaml:"log_level"`
}

// ServerConfig configures the backend API
type ServerConfig struct {
	Addr           string `yaml:"addr"`
	DataDir        string `yaml:"data_dir"`
	MaxUploadMB    int    `yaml:"max_upload_mb"`
	WaveformPoints int    `yaml:"waveform_points"`
}

// ClientConfig configures the commands that talk to a backend
type ClientConfig struct {
	ServerURL      string        `yaml:"server_url"`
	BitrateKbps    int           `yaml:"bitrate_kbps"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// MediaConfig names the external tools used for probing and encoding
type MediaConfig struct {
	FFmpeg  string `yaml:"ffmpeg"`
	FFprobe string `yaml:"ffprobe"`
}

// DefaultConfig returns the built-in settings
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8000",
			DataDir:        "data",
			MaxUploadMB:    200,
			WaveformPoints: 2000,
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:8000",
			BitrateKbps:    DefaultBitrateKbps,
			RequestTimeout: 10 * time.Minute,
		},
		Media: MediaConfig{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the effective configuration: defaults, then the YAML file
// at path (or ~/.audio-splitter.yaml when path is empty and the file exists),
// then AUDIO_SPLITTER_* environment variables.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, DefaultConfigName)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
			LogDebug("Loaded config from %s", path)
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Addr = envStr("AUDIO_SPLITTER_ADDR", c.Server.Addr)
	c.Server.DataDir = envStr("AUDIO_SPLITTER_DATA_DIR", c.Server.DataDir)
	c.Server.MaxUploadMB = envInt("AUDIO_SPLITTER_MAX_UPLOAD_MB", c.Server.MaxUploadMB)
	c.Server.WaveformPoints = envInt("AUDIO_SPLITTER_WAVEFORM_POINTS", c.Server.WaveformPoints)
	c.Client.ServerURL = envStr("AUDIO_SPLITTER_SERVER", c.Client.ServerURL)
	c.Client.BitrateKbps = envInt("AUDIO_SPLITTER_BITRATE", c.Client.BitrateKbps)
	c.Client.RequestTimeout = envDuration("AUDIO_SPLITTER_TIMEOUT", c.Client.RequestTimeout)
	c.Media.FFmpeg = envStr("AUDIO_SPLITTER_FFMPEG", c.Media.FFmpeg)
	c.Media.FFprobe = envStr("AUDIO_SPLITTER_FFPROBE", c.Media.FFprobe)
	c.LogLevel = envStr("AUDIO_SPLITTER_LOG_LEVEL", c.LogLevel)
}

// Validate rejects settings the server or client cannot work with
func (c Config) Validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return &ValidationError{Field: "server.max_upload_mb", Msg: "must be positive"}
	}
	if c.Server.WaveformPoints <= 0 {
		return &ValidationError{Field: "server.waveform_points", Msg: "must be positive"}
	}
	if c.Client.BitrateKbps < MinBitrateKbps || c.Client.BitrateKbps > MaxBitrateKbps {
		return &ValidationError{Field: "client.bitrate_kbps", Msg: "must be between 64 and 320"}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Field: "log_level", Msg: err.Error()}
	}
	return nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c ServerConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		LogWarn("Ignoring %s=%q: not an integer", key, v)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		LogWarn("Ignoring %s=%q: not a duration", key, v)
	}
	return fallback
}

// Package media wraps ffmpeg and ffprobe for probing, cutting and decoding
// audio, and provides the terminal media source used by interactive sessions.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// FFmpeg and ffprobe settings
const (
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"

	AudioCodec = "libmp3lame"

	// EnvelopeSampleRate is the mono rate audio is decoded at for envelopes
	EnvelopeSampleRate = 8000
	PCMFormat          = "f32le"
	PipeOut            = "pipe:1"
)

// Runner invokes the ffmpeg and ffprobe executables
type Runner struct {
	FFmpeg  string
	FFprobe string
}

// NewRunner returns a Runner for the configured executables
func NewRunner(cfg internal.MediaConfig) *Runner {
	r := &Runner{FFmpeg: cfg.FFmpeg, FFprobe: cfg.FFprobe}
	if r.FFmpeg == "" {
		r.FFmpeg = FFmpegCommand
	}
	if r.FFprobe == "" {
		r.FFprobe = FFprobeCommand
	}
	return r
}

// BuildCutArgs returns the ffmpeg arguments that encode [start, end) of src
// into an MP3 at dst.
func BuildCutArgs(src, dst string, start, end float64, bitrateKbps int) []string {
	length := end - start
	if length < 0 {
		length = 0
	}
	return []string{
		"-y",
		"-ss", fmt.Sprintf("%.3f", start),
		"-t", fmt.Sprintf("%.3f", length),
		"-i", src,
		"-vn",
		"-acodec", AudioCodec,
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		dst,
	}
}

// BuildDecodeArgs returns the ffmpeg arguments that decode src to mono
// float32 PCM on stdout.
func BuildDecodeArgs(src string, sampleRate int) []string {
	return []string{
		"-v", FFprobeLogLevel,
		"-i", src,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-f", PCMFormat,
		PipeOut,
	}
}

// Probe returns the duration in seconds of a file or URL
func (r *Runner) Probe(ctx context.Context, input string) (float64, error) {
	out, err := r.run(ctx, "probe", input, r.FFprobe,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		input,
	)
	if err != nil {
		return 0, err
	}
	return ParseProbeDuration(string(out))
}

// ParseProbeDuration parses ffprobe's csv duration output
func ParseProbeDuration(out string) (float64, error) {
	s := strings.TrimSpace(out)
	if s == "" || s == "N/A" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	return d, nil
}

// Cut encodes one segment of src into dst
func (r *Runner) Cut(ctx context.Context, src, dst string, seg segment.Segment, bitrateKbps int) error {
	args := BuildCutArgs(src, dst, seg.StartS, seg.EndS, bitrateKbps)
	internal.LogDebug("ffmpeg %s", strings.Join(args, " "))
	_, err := r.run(ctx, "cut", dst, r.FFmpeg, args...)
	return err
}

// DecodePCM decodes src to mono float32 samples at sampleRate
func (r *Runner) DecodePCM(ctx context.Context, src string, sampleRate int) ([]float32, error) {
	out, err := r.run(ctx, "decode", src, r.FFmpeg, BuildDecodeArgs(src, sampleRate)...)
	if err != nil {
		return nil, err
	}
	return DecodeF32LE(out), nil
}

// Version returns the first line of `<bin> -version`
func (r *Runner) Version(ctx context.Context, bin string) (string, error) {
	out, err := r.run(ctx, "version", bin, bin, "-version")
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(out), "\n")
	return strings.TrimSpace(line), nil
}

func (r *Runner) run(ctx context.Context, op, path, bin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			err = fmt.Errorf("%s not found in PATH", bin)
		}
		return nil, &internal.MediaError{
			Op:     op,
			Path:   path,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

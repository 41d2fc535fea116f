package media

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// DecodeF32LE converts little-endian float32 PCM bytes to samples. A
// trailing partial sample is ignored.
func DecodeF32LE(b []byte) []float32 {
	n := len(b) / 4
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return samples
}

// PeakEnvelope returns points values, each the peak absolute amplitude of
// one window of samples. Windows are len(samples)/points long (at least 1);
// the result is zero padded when there are fewer windows than points.
func PeakEnvelope(samples []float32, points int) []float64 {
	if points <= 0 {
		return []float64{}
	}
	values := make([]float64, points)
	if len(samples) == 0 {
		return values
	}

	win := len(samples) / points
	if win < 1 {
		win = 1
	}
	frames := len(samples) / win
	if frames > points {
		frames = points
	}

	for f := 0; f < frames; f++ {
		var peak float64
		for _, s := range samples[f*win : (f+1)*win] {
			if a := math.Abs(float64(s)); a > peak {
				peak = a
			}
		}
		values[f] = peak
	}
	return values
}

// BuildTimes returns n evenly spaced times from 0 to duration inclusive
func BuildTimes(duration float64, n int) []float64 {
	if n <= 1 {
		return []float64{0}
	}
	times := make([]float64, n)
	step := duration / float64(n-1)
	for i := range times {
		times[i] = float64(i) * step
	}
	times[n-1] = duration
	return times
}

// BuildEnvelope decodes src and computes its peak envelope with a time axis
func (r *Runner) BuildEnvelope(ctx context.Context, src string, duration float64, points int) (*internal.Waveform, error) {
	samples, err := r.DecodePCM(ctx, src, EnvelopeSampleRate)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(duration) || duration <= 0 {
		duration = float64(len(samples)) / EnvelopeSampleRate
	}
	values := PeakEnvelope(samples, points)
	return &internal.Waveform{
		TimesS: BuildTimes(duration, len(values)),
		Values: values,
	}, nil
}

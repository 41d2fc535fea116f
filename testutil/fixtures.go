package testutil

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

// FixtureSampleRate is the sample rate of generated WAV fixtures
const FixtureSampleRate = 8000

// SilentWAV returns a mono 16-bit PCM WAV file of the given length
func SilentWAV(t *testing.T, seconds float64) []byte {
	t.Helper()
	return pcmWAV(t, make([]int16, int(seconds*FixtureSampleRate)))
}

// ToneWAV returns a mono 16-bit PCM WAV file holding a sine tone at the given
// amplitude (0..1)
func ToneWAV(t *testing.T, seconds, freq, amplitude float64) []byte {
	t.Helper()
	n := int(seconds * FixtureSampleRate)
	samples := make([]int16, n)
	for i := range samples {
		v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/FixtureSampleRate)
		samples[i] = int16(v * math.MaxInt16)
	}
	return pcmWAV(t, samples)
}

func pcmWAV(t *testing.T, samples []int16) []byte {
	t.Helper()
	const (
		channels      = 1
		bitsPerSample = 16
	)
	dataSize := uint32(len(samples) * 2)
	byteRate := uint32(FixtureSampleRate * channels * bitsPerSample / 8)

	var buf bytes.Buffer
	write := func(v interface{}) {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("Failed to build WAV fixture: %v", err)
		}
	}

	buf.WriteString("RIFF")
	write(uint32(36 + dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	write(uint32(16))
	write(uint16(1)) // PCM
	write(uint16(channels))
	write(uint32(FixtureSampleRate))
	write(byteRate)
	write(uint16(channels * bitsPerSample / 8))
	write(uint16(bitsPerSample))
	buf.WriteString("data")
	write(dataSize)
	write(samples)

	return buf.Bytes()
}

package segment

import (
	"math"
	"reflect"
	"testing"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		markers  []float64
		duration float64
		want     []Segment
	}{
		{
			name:     "no markers spans whole duration",
			markers:  nil,
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 10, Filename: "segment_01.mp3", Key: 1},
			},
		},
		{
			name:     "two markers make three segments",
			markers:  []float64{3, 7},
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 3, Filename: "segment_01.mp3", Key: 1},
				{StartS: 3, EndS: 7, Filename: "segment_02.mp3", Key: 2},
				{StartS: 7, EndS: 10, Filename: "segment_03.mp3", Key: 3},
			},
		},
		{
			name:     "slivers dropped and numbering skips",
			markers:  []float64{0.05, 9.95},
			duration: 10,
			want: []Segment{
				{StartS: 0.05, EndS: 9.95, Filename: "segment_02.mp3", Key: 2},
			},
		},
		{
			name:     "short media yields nothing",
			markers:  nil,
			duration: 0.1,
			want:     []Segment{},
		},
		{
			name:     "marker at zero and at duration",
			markers:  []float64{0, 5, 10},
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 5, Filename: "segment_02.mp3", Key: 2},
				{StartS: 5, EndS: 10, Filename: "segment_03.mp3", Key: 3},
			},
		},
		{
			name:     "duplicate markers",
			markers:  []float64{4, 4},
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 4, Filename: "segment_01.mp3", Key: 1},
				{StartS: 4, EndS: 10, Filename: "segment_03.mp3", Key: 3},
			},
		},
		{
			name:     "marker beyond duration",
			markers:  []float64{5, 12},
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 5, Filename: "segment_01.mp3", Key: 1},
				{StartS: 5, EndS: 12, Filename: "segment_02.mp3", Key: 2},
			},
		},
		{
			name:     "NaN duration falls back to markers only",
			markers:  []float64{4},
			duration: math.NaN(),
			want: []Segment{
				{StartS: 0, EndS: 4, Filename: "segment_01.mp3", Key: 1},
			},
		},
		{
			name:     "infinite duration with no markers",
			markers:  nil,
			duration: math.Inf(1),
			want:     []Segment{},
		},
		{
			name:     "non-finite marker is removed before numbering",
			markers:  []float64{math.NaN(), 5},
			duration: 10,
			want: []Segment{
				{StartS: 0, EndS: 5, Filename: "segment_01.mp3", Key: 1},
				{StartS: 5, EndS: 10, Filename: "segment_02.mp3", Key: 2},
			},
		},
		{
			name:     "exactly minimum length kept",
			markers:  []float64{0.2},
			duration: 0.4,
			want: []Segment{
				{StartS: 0, EndS: 0.2, Filename: "segment_01.mp3", Key: 1},
				{StartS: 0.2, EndS: 0.4, Filename: "segment_02.mp3", Key: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(tt.markers, tt.duration)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Build(%v, %v) = %+v, want %+v", tt.markers, tt.duration, got, tt.want)
			}
		})
	}
}

func TestBuild_Invariants(t *testing.T) {
	markers := []float64{0.1, 0.15, 1, 1.1, 1.35, 2, 2, 5.5, 9.9}
	got := Build(markers, 10)

	for i, s := range got {
		if s.Length() < MinLength {
			t.Errorf("segment %d shorter than %v: %+v", i, MinLength, s)
		}
		if i > 0 {
			prev := got[i-1]
			if s.StartS < prev.EndS {
				t.Errorf("segment %d overlaps previous: %+v after %+v", i, s, prev)
			}
			if s.Key <= prev.Key {
				t.Errorf("segment keys not increasing: %d after %d", s.Key, prev.Key)
			}
		}
	}
}

func TestBuild_DoesNotModifyInput(t *testing.T) {
	markers := []float64{math.NaN(), 3, 7}
	_ = Build(markers, 10)
	if !math.IsNaN(markers[0]) || markers[1] != 3 || markers[2] != 7 {
		t.Errorf("Build modified its input: %v", markers)
	}
}

func TestDefaultFilename(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "segment_01.mp3"},
		{9, "segment_09.mp3"},
		{10, "segment_10.mp3"},
		{123, "segment_123.mp3"},
	}
	for _, tt := range tests {
		if got := DefaultFilename(tt.n); got != tt.want {
			t.Errorf("DefaultFilename(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestIndexOfKey(t *testing.T) {
	segs := Build([]float64{0.05, 5}, 10)
	if got := IndexOfKey(segs, 2); got != 0 {
		t.Errorf("IndexOfKey(2) = %d, want 0", got)
	}
	if got := IndexOfKey(segs, 1); got != -1 {
		t.Errorf("IndexOfKey(1) = %d, want -1 for dropped sliver", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "already mp3", input: "intro.mp3", want: "intro.mp3"},
		{name: "adds extension", input: "intro", want: "intro.mp3"},
		{name: "upper case extension kept", input: "Intro.MP3", want: "Intro.MP3"},
		{name: "trims whitespace", input: "  chorus  ", want: "chorus.mp3"},
		{name: "forward slash", input: "../etc/passwd", want: ".._etc_passwd.mp3"},
		{name: "backslash", input: `a\b.mp3`, want: "a_b.mp3"},
		{name: "other extension", input: "take.wav", want: "take.wav.mp3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Package segment derives the list of exportable segments from a set of
// markers and the media duration.
package segment

import (
	"fmt"
	"math"
	"strings"
)

// MinLength is the shortest span, in seconds, that becomes a segment.
// Anything shorter between two boundaries is dropped.
const MinLength = 0.2

// Extension is appended to every exported filename.
const Extension = ".mp3"

// Segment is a contiguous [StartS, EndS) span of the source audio.
type Segment struct {
	StartS   float64 `json:"start_s" yaml:"start_s"`
	EndS     float64 `json:"end_s" yaml:"end_s"`
	Filename string  `json:"filename" yaml:"filename"`

	// Key is the 1-based position of the span among all candidate spans,
	// including dropped slivers. It stays stable while the marker set is
	// unchanged and is what UI rows use to address a segment.
	Key int `json:"-" yaml:"-"`
}

// Length returns the duration of the segment in seconds.
func (s Segment) Length() float64 {
	return s.EndS - s.StartS
}

// DefaultFilename returns the generated name for the n-th candidate span.
func DefaultFilename(n int) string {
	return fmt.Sprintf("segment_%02d%s", n, Extension)
}

// Build turns markers and a duration into segments.
//
// Boundaries are 0, then the markers in the order given, then duration.
// Non-finite boundaries are discarded. Each adjacent pair of the remaining
// boundaries is a candidate span; spans shorter than MinLength (including
// negative ones from unsorted input) are skipped. Filenames are numbered by
// candidate position, so numbering has gaps where slivers were dropped.
func Build(markers []float64, duration float64) []Segment {
	boundaries := make([]float64, 0, len(markers)+2)
	boundaries = append(boundaries, 0)
	boundaries = append(boundaries, markers...)
	boundaries = append(boundaries, duration)

	finite := boundaries[:0]
	for _, b := range boundaries {
		if math.IsNaN(b) || math.IsInf(b, 0) {
			continue
		}
		finite = append(finite, b)
	}

	segments := []Segment{}
	if len(finite) < 2 {
		return segments
	}

	for i := 0; i < len(finite)-1; i++ {
		start, end := finite[i], finite[i+1]
		if end-start < MinLength {
			continue
		}
		segments = append(segments, Segment{
			StartS:   start,
			EndS:     end,
			Filename: DefaultFilename(i + 1),
			Key:      i + 1,
		})
	}

	return segments
}

// IndexOfKey returns the position of the segment carrying key, or -1.
func IndexOfKey(segments []Segment, key int) int {
	for i, s := range segments {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// SanitizeFilename makes a user supplied name safe to write into an output
// directory: it trims whitespace, replaces path separators and forces the
// .mp3 extension.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if !strings.HasSuffix(strings.ToLower(name), Extension) {
		name += Extension
	}
	return name
}

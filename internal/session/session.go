// Package session holds the editing state of one uploaded project and the
// controller that drives it from user actions, backend replies and media
// events.
package session

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

var (
	// ErrInvalidTransition is wrapped by every *TransitionError
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrNothingToExport is returned by BeginExport when no segment survives
	ErrNothingToExport = errors.New("no segments to export")
	// ErrSegmentIndex is returned for an out of range segment position
	ErrSegmentIndex = errors.New("segment index out of range")
	// ErrUnknownSegment is returned for a segment key not in the current list
	ErrUnknownSegment = errors.New("unknown segment")
)

// TransitionError reports an operation attempted in the wrong state
type TransitionError struct {
	Op   string
	From State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s while %s", e.Op, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Session is the state of one editing session. It is not safe for
// concurrent use; the Controller owns it and mutates it from one goroutine.
type Session struct {
	state     State
	projectID string
	duration  float64
	markers   []float64
	segments  []segment.Segment
}

// New returns an empty session
func New() *Session {
	return &Session{state: StateEmpty, duration: math.NaN()}
}

// State returns the current lifecycle phase
func (s *Session) State() State { return s.state }

// ProjectID returns the backend id of the loaded project, or ""
func (s *Session) ProjectID() string { return s.projectID }

// Duration returns the media duration, NaN until the media is ready
func (s *Session) Duration() float64 { return s.duration }

// Markers returns a copy of the sorted marker list
func (s *Session) Markers() []float64 {
	return append([]float64(nil), s.markers...)
}

// Segments returns a copy of the current segment list
func (s *Session) Segments() []segment.Segment {
	return append([]segment.Segment(nil), s.segments...)
}

func (s *Session) require(op string, allowed ...State) error {
	for _, st := range allowed {
		if s.state == st {
			return nil
		}
	}
	return &TransitionError{Op: op, From: s.state}
}

// BeginUpload starts an upload. A new upload may replace a project that is
// loading or ready.
func (s *Session) BeginUpload() error {
	if err := s.require("upload", StateEmpty, StateLoading, StateReady); err != nil {
		return err
	}
	s.state = StateUploading
	return nil
}

// UploadSucceeded records the new project id and discards all editing state
// of any previous project.
func (s *Session) UploadSucceeded(projectID string) error {
	if err := s.require("complete upload", StateUploading); err != nil {
		return err
	}
	s.projectID = projectID
	s.duration = math.NaN()
	s.markers = nil
	s.segments = nil
	s.state = StateLoading
	return nil
}

// UploadFailed returns to Empty with nothing retained, including any
// project that was loaded before the upload started.
func (s *Session) UploadFailed() error {
	if err := s.require("fail upload", StateUploading); err != nil {
		return err
	}
	s.reset()
	return nil
}

// MediaFailed returns to Empty when the project's audio cannot be attached
func (s *Session) MediaFailed() error {
	if err := s.require("fail media", StateLoading); err != nil {
		return err
	}
	s.reset()
	return nil
}

func (s *Session) reset() {
	*s = Session{state: StateEmpty, duration: math.NaN()}
}

// MediaReady records the duration reported by the media source. The
// duration may be non-finite; the segment builder ignores it in that case.
func (s *Session) MediaReady(duration float64) error {
	if err := s.require("attach media", StateLoading); err != nil {
		return err
	}
	s.duration = duration
	s.state = StateReady
	s.recompute()
	return nil
}

// AddMarker inserts t into the sorted marker list after any equal values
// and rebuilds the segments. Filenames edited since the last rebuild are
// replaced by defaults. Negative positions are clamped to zero.
func (s *Session) AddMarker(t float64) error {
	if err := s.require("add marker", StateReady); err != nil {
		return err
	}
	if t < 0 {
		t = 0
	}
	// NaN markers are kept at the tail so finite values stay ordered
	i := len(s.markers)
	if !math.IsNaN(t) {
		i = sort.Search(len(s.markers), func(i int) bool {
			m := s.markers[i]
			return m > t || math.IsNaN(m)
		})
	}
	s.markers = append(s.markers, 0)
	copy(s.markers[i+1:], s.markers[i:])
	s.markers[i] = t
	s.recompute()
	return nil
}

// EditFilename sets the filename of the segment at position index of the
// current list. The value is kept as typed; the backend sanitises it.
func (s *Session) EditFilename(index int, value string) error {
	if err := s.require("edit filename", StateReady); err != nil {
		return err
	}
	if index < 0 || index >= len(s.segments) {
		return fmt.Errorf("%w: %d (have %d)", ErrSegmentIndex, index, len(s.segments))
	}
	s.segments[index].Filename = value
	return nil
}

// BeginExport snapshots the segments into an export request and moves to
// Exporting. With no segments it returns ErrNothingToExport and stays Ready.
func (s *Session) BeginExport(bitrateKbps int) (internal.ExportRequest, error) {
	if err := s.require("export", StateReady); err != nil {
		return internal.ExportRequest{}, err
	}
	if len(s.segments) == 0 {
		return internal.ExportRequest{}, ErrNothingToExport
	}
	req := internal.ExportRequest{
		Segments:    s.Segments(),
		BitrateKbps: bitrateKbps,
	}
	s.state = StateExporting
	return req, nil
}

// ExportFinished returns to Ready after an export, whatever its outcome.
// Markers and segments are left as they were.
func (s *Session) ExportFinished() error {
	if err := s.require("finish export", StateExporting); err != nil {
		return err
	}
	s.state = StateReady
	return nil
}

func (s *Session) recompute() {
	s.segments = segment.Build(s.markers, s.duration)
}

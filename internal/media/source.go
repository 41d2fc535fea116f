package media

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// DefaultTickInterval is how often a playing Source reports its position
const DefaultTickInterval = 250 * time.Millisecond

// Prober reports the duration of a media URL
type Prober interface {
	Probe(ctx context.Context, input string) (float64, error)
}

// Probers tries each prober in order and returns the first usable duration
type Probers []Prober

func (ps Probers) Probe(ctx context.Context, input string) (float64, error) {
	var errs []error
	for _, p := range ps {
		d, err := p.Probe(ctx, input)
		if err == nil && isFinite(d) && d > 0 {
			return d, nil
		}
		if err == nil {
			err = errors.New("no usable duration")
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return 0, errors.New("no prober configured")
	}
	return 0, errors.Join(errs...)
}

// Source is a media source for terminals: it cannot produce sound, so it
// keeps a virtual playhead that advances with wall-clock time while playing.
// The duration is probed from the audio URL in the background.
type Source struct {
	prober Prober
	tick   time.Duration
	now    func() time.Time

	mu       sync.Mutex
	duration float64
	offset   float64   // position at anchor
	anchor   time.Time // when offset was taken, while playing
	playing  bool
	cancel   context.CancelFunc
}

// NewSource returns a Source that probes with p
func NewSource(p Prober) *Source {
	return &Source{
		prober:   p,
		tick:     DefaultTickInterval,
		now:      time.Now,
		duration: math.NaN(),
	}
}

// Load attaches url, replacing any previous media. onReady is called once
// with the probed duration, or NaN if probing fails. onTime is called every
// tick while playing.
func (s *Source) Load(url string, onTime, onReady func(float64)) error {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.duration = math.NaN()
	s.offset = 0
	s.playing = false
	s.mu.Unlock()

	go func() {
		d, err := s.prober.Probe(ctx, url)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			internal.LogWarn("Could not determine duration of %s: %v", url, err)
			d = math.NaN()
		}
		s.mu.Lock()
		s.duration = d
		s.mu.Unlock()
		onReady(d)
	}()

	go s.tickLoop(ctx, onTime)
	return nil
}

func (s *Source) tickLoop(ctx context.Context, onTime func(float64)) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			playing := s.playing
			pos := s.positionLocked()
			s.mu.Unlock()
			if playing {
				onTime(pos)
			}
		}
	}
}

// positionLocked returns the playhead, stopping playback at the end
func (s *Source) positionLocked() float64 {
	pos := s.offset
	if s.playing {
		pos += s.now().Sub(s.anchor).Seconds()
	}
	if isFinite(s.duration) && pos >= s.duration {
		pos = s.duration
		s.offset = pos
		s.playing = false
	}
	return pos
}

// CurrentTime returns the playhead in seconds
func (s *Source) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionLocked()
}

// Duration returns the probed duration, NaN until known
func (s *Source) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// Playing reports whether the playhead is advancing
func (s *Source) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionLocked()
	return s.playing
}

// PlayPause toggles playback
func (s *Source) PlayPause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offset = s.positionLocked()
	s.anchor = s.now()
	s.playing = !s.playing
}

// Seek moves the playhead, clamped to [0, duration]
func (s *Source) Seek(t float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if isFinite(s.duration) && t > s.duration {
		t = s.duration
	}
	s.offset = t
	s.anchor = s.now()
}

// Close stops background work
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.playing = false
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Package server implements the audio-splitter backend API: uploads,
// audio streaming, waveform envelopes and MP3 export.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/media"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// Timeouts for the HTTP listener
const (
	ReadHeaderTimeout = 30 * time.Second
	ShutdownTimeout   = 10 * time.Second
)

// Encoder probes, cuts and decodes audio files
type Encoder interface {
	Probe(ctx context.Context, input string) (float64, error)
	Cut(ctx context.Context, src, dst string, seg segment.Segment, bitrateKbps int) error
	BuildEnvelope(ctx context.Context, src string, duration float64, points int) (*internal.Waveform, error)
}

// Server holds the backend's dependencies
type Server struct {
	cfg      internal.ServerConfig
	store    *internal.Store
	paths    internal.StoragePaths
	cache    *internal.CacheManager
	enc      Encoder
	readTags func(path string) (internal.AudioTags, error)
	mux      *http.ServeMux
}

// New creates a Server. The data layout under paths must already exist.
func New(cfg internal.ServerConfig, store *internal.Store, paths internal.StoragePaths, enc Encoder) *Server {
	s := &Server{
		cfg:      cfg,
		store:    store,
		paths:    paths,
		cache:    internal.NewCacheManager(paths.CacheDir()),
		enc:      enc,
		readTags: media.ReadTags,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/projects", s.handleCreateProject)
	s.mux.HandleFunc("GET /api/projects", s.handleListProjects)
	s.mux.HandleFunc("DELETE /api/projects", s.handleDeleteAllProjects)
	s.mux.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	s.mux.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)
	s.mux.HandleFunc("GET /api/projects/{id}/audio", s.handleAudio)
	s.mux.HandleFunc("GET /api/projects/{id}/waveform", s.handleWaveform)
	s.mux.HandleFunc("POST /api/projects/{id}/export", s.handleExport)
}

// Handler returns the API with request logging
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("Listening on %s (data: %s)", addr, s.paths.DataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	internal.LogInfo("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		internal.LogDebug("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

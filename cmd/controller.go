package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/gateway"
	"github.com/ChristianPRO1982/audio-splitter/internal/media"
	"github.com/ChristianPRO1982/audio-splitter/internal/session"
)

// liveSession is a running controller bound to the configured backend
type liveSession struct {
	ctl    *session.Controller
	client *gateway.Client
	cancel context.CancelFunc
	done   chan error

	// out and errOut are shared with the renderer; write through them only
	out    io.Writer
	errOut io.Writer
}

// startSession starts a controller whose media source learns durations from
// the backend first and from a local ffprobe second.
func startSession(ctx context.Context, out, errOut io.Writer, tables bool) *liveSession {
	mu := &sync.Mutex{}
	out, errOut = syncWriter{mu: mu, w: out}, syncWriter{mu: mu, w: errOut}

	client := newClient()
	src := media.NewSource(media.Probers{client, media.NewRunner(cfg.Media)})
	ctl := session.NewController(client, src, newTermRenderer(out, errOut, tables))

	ctx, cancel := context.WithCancel(ctx)
	ls := &liveSession{
		ctl:    ctl,
		client: client,
		cancel: cancel,
		done:   make(chan error, 1),
		out:    out,
		errOut: errOut,
	}
	go func() { ls.done <- ctl.Run(ctx) }()
	return ls
}

// Stop ends the controller and waits for it to return
func (ls *liveSession) Stop() {
	ls.cancel()
	if err := <-ls.done; err != nil && !errors.Is(err, context.Canceled) {
		internal.LogDebug("Controller stopped: %v", err)
	}
}

// wait blocks until pred holds, bounded by the client request timeout
func (ls *liveSession) wait(ctx context.Context, pred func(session.View) bool) (session.View, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()
	return ls.ctl.WaitFor(ctx, pred)
}

// upload sends path and waits until the media is ready or the upload failed
func (ls *liveSession) upload(ctx context.Context, path string) (session.View, error) {
	before := ls.ctl.View().Uploads
	ls.ctl.Upload(path)

	v, err := ls.wait(ctx, func(v session.View) bool { return v.Uploads > before })
	if err != nil {
		return v, err
	}
	if v.State == session.StateEmpty || v.ProjectID == "" {
		return v, fmt.Errorf("upload failed: %s", gateway.DetailText(v.Notice.Text))
	}
	return ls.wait(ctx, func(v session.View) bool {
		return v.State == session.StateReady || v.State == session.StateEmpty
	})
}

// mark seeks to t and adds a marker there
func (ls *liveSession) mark(ctx context.Context, t float64) (session.View, error) {
	ls.ctl.Seek(t)
	ls.ctl.AddMarker()
	if err := ls.sync(ctx); err != nil {
		return ls.ctl.View(), err
	}
	return ls.ctl.View(), nil
}

// export submits the segments and waits for the attempt to settle
func (ls *liveSession) export(ctx context.Context, kbps int) (session.View, error) {
	before := ls.ctl.View().Exports
	ls.ctl.Export(kbps)
	v, err := ls.wait(ctx, func(v session.View) bool { return v.Exports > before })
	if err != nil {
		return v, err
	}
	if v.ExportErr != "" {
		return v, fmt.Errorf("export failed: %s", gateway.DetailText(v.ExportErr))
	}
	if v.Notice.Level == session.NoticeWarning {
		return v, errors.New(v.Notice.Text)
	}
	return v, nil
}

func (ls *liveSession) sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout())
	defer cancel()
	return ls.ctl.Sync(ctx)
}

// syncWriter serializes writes from the controller and the command goroutine
type syncWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (s syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func requestTimeout() time.Duration {
	if cfg.Client.RequestTimeout > 0 {
		return cfg.Client.RequestTimeout
	}
	return gateway.DefaultTimeout
}

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// User-visible notices
const (
	MsgUploading       = "Uploading..."
	MsgAudioLoaded     = "Audio loaded. Add markers, then export."
	MsgNothingToExport = "No segments to export (add markers)."
	MsgExporting       = "Exporting..."
)

// Gateway is the backend the controller uploads to and exports through
type Gateway interface {
	CreateProject(ctx context.Context, path string) (string, error)
	AudioURL(projectID string) string
	Export(ctx context.Context, projectID string, req internal.ExportRequest) (json.RawMessage, error)
}

// MediaSource plays the project audio. onReady fires once when the duration
// is known (it may be non-finite if it could not be determined); onTime fires
// periodically with the playback position. Both may be called from any
// goroutine.
type MediaSource interface {
	Load(url string, onTime func(float64), onReady func(float64)) error
	CurrentTime() float64
	Duration() float64
	PlayPause()
	Seek(t float64)
	Close() error
}

// Renderer receives every published view and every notice
type Renderer interface {
	Render(v View)
	Notify(n Notice)
}

// NoticeLevel grades a notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message for the user
type Notice struct {
	Level NoticeLevel
	Text  string
}

// View is an immutable snapshot of everything a render target shows
type View struct {
	Seq       uint64
	State     State
	ProjectID string
	Duration  float64
	Position  float64
	Markers   []float64
	Segments  []segment.Segment
	Notice    Notice

	// Counters of settled upload and export attempts, including local rejections
	Uploads int
	Exports int

	LastExport json.RawMessage
	ExportErr  string
}

// Segment returns the segment carrying key
func (v View) Segment(key int) (segment.Segment, bool) {
	i := segment.IndexOfKey(v.Segments, key)
	if i < 0 {
		return segment.Segment{}, false
	}
	return v.Segments[i], true
}

// Controller is the single owner of a Session. Every input is queued as an
// event and handled to completion on the goroutine running Run, so handlers
// never interleave. Network calls run on helper goroutines and report back
// through the same queue.
type Controller struct {
	gateway  Gateway
	media    MediaSource
	renderer Renderer

	events chan func()
	done   chan struct{}
	ctx    context.Context

	// owned by the Run goroutine
	session    *Session
	generation int
	position   float64
	notice     Notice
	uploads    int
	exports    int
	lastExport json.RawMessage
	exportErr  string

	mu      sync.Mutex
	view    View
	seq     uint64
	changed chan struct{}
}

// NewController wires a controller to its collaborators. renderer may be nil.
func NewController(gateway Gateway, media MediaSource, renderer Renderer) *Controller {
	c := &Controller{
		gateway:  gateway,
		media:    media,
		renderer: renderer,
		events:   make(chan func(), 64),
		done:     make(chan struct{}),
		ctx:      context.Background(),
		session:  New(),
		changed:  make(chan struct{}),
	}
	c.view = c.snapshot()
	return c
}

// Run processes events until ctx is done. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer func() {
		if err := c.media.Close(); err != nil {
			internal.LogDebug("Closing media source: %v", err)
		}
	}()

	c.ctx = ctx
	c.publish()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-c.events:
			fn()
		}
	}
}

// post queues fn for the Run goroutine. It gives up once Run has returned.
func (c *Controller) post(fn func()) {
	select {
	case c.events <- fn:
	case <-c.done:
	}
}

// View returns the latest published snapshot
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// WaitFor blocks until a published view satisfies pred or ctx is done
func (c *Controller) WaitFor(ctx context.Context, pred func(View) bool) (View, error) {
	for {
		c.mu.Lock()
		v, ch := c.view, c.changed
		c.mu.Unlock()

		if pred(v) {
			return v, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return v, ctx.Err()
		case <-c.done:
			return c.View(), errors.New("controller stopped")
		}
	}
}

// Sync blocks until every input queued before the call has been handled
func (c *Controller) Sync(ctx context.Context) error {
	handled := make(chan struct{})
	go c.post(func() { close(handled) })
	select {
	case <-handled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return errors.New("controller stopped")
	}
}

// Upload sends the file at path to the backend as a new project
func (c *Controller) Upload(path string) {
	c.post(func() { c.handleUpload(path) })
}

// TogglePlay starts or pauses playback
func (c *Controller) TogglePlay() {
	c.post(func() {
		if !c.session.State().HasProject() {
			return
		}
		c.media.PlayPause()
	})
}

// Seek moves the playhead to t seconds
func (c *Controller) Seek(t float64) {
	c.post(func() { c.seekTo(t) })
}

// AddMarker places a marker at the current playback position
func (c *Controller) AddMarker() {
	c.post(c.handleAddMarker)
}

// EditFilename renames the segment carrying key
func (c *Controller) EditFilename(key int, value string) {
	c.post(func() { c.handleEditFilename(key, value) })
}

// JumpTo seeks to the start of the segment carrying key
func (c *Controller) JumpTo(key int) {
	c.post(func() {
		i := segment.IndexOfKey(c.session.segments, key)
		if i < 0 {
			c.setNotice(NoticeWarning, fmt.Sprintf("%v: %d", ErrUnknownSegment, key))
			c.publish()
			return
		}
		c.seekTo(c.session.segments[i].StartS)
	})
}

// Export submits the current segments for encoding at bitrateKbps
func (c *Controller) Export(bitrateKbps int) {
	c.post(func() { c.handleExport(bitrateKbps) })
}

func (c *Controller) handleUpload(path string) {
	if err := c.session.BeginUpload(); err != nil {
		c.uploads++
		c.setNotice(NoticeWarning, err.Error())
		c.publish()
		return
	}
	// media events from the previous project are stale from here on
	c.generation++
	c.position = 0
	c.setNotice(NoticeInfo, MsgUploading)
	c.publish()

	ctx := c.ctx
	go func() {
		id, err := c.gateway.CreateProject(ctx, path)
		c.post(func() { c.uploadDone(id, err) })
	}()
}

func (c *Controller) uploadDone(projectID string, err error) {
	c.uploads++
	if err != nil {
		_ = c.session.UploadFailed()
		internal.LogWarn("Upload failed: %v", err)
		c.setNotice(NoticeError, err.Error())
		c.publish()
		return
	}
	if err := c.session.UploadSucceeded(projectID); err != nil {
		c.setNotice(NoticeError, err.Error())
		c.publish()
		return
	}
	c.lastExport = nil
	c.exportErr = ""
	c.setNotice(NoticeInfo, "Project: "+projectID)
	c.publish()

	gen := c.generation
	url := c.gateway.AudioURL(projectID)
	err = c.media.Load(url,
		func(t float64) {
			c.post(func() {
				if gen != c.generation {
					return
				}
				c.position = t
				c.publish()
			})
		},
		func(d float64) {
			c.post(func() {
				if gen != c.generation {
					return
				}
				c.mediaReady(d)
			})
		},
	)
	if err != nil {
		internal.LogWarn("Loading media %s failed: %v", url, err)
		_ = c.session.MediaFailed()
		c.setNotice(NoticeError, err.Error())
		c.publish()
	}
}

func (c *Controller) mediaReady(duration float64) {
	if err := c.session.MediaReady(duration); err != nil {
		internal.LogDebug("Ignoring media ready: %v", err)
		return
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) {
		internal.LogWarn("Media duration unknown for project %s", c.session.ProjectID())
	}
	c.setNotice(NoticeSuccess, MsgAudioLoaded)
	c.publish()
}

func (c *Controller) seekTo(t float64) {
	if !c.session.State().HasProject() {
		return
	}
	c.media.Seek(t)
	c.position = c.media.CurrentTime()
	c.publish()
}

func (c *Controller) handleAddMarker() {
	t := c.media.CurrentTime()
	if err := c.session.AddMarker(t); err != nil {
		c.setNotice(NoticeWarning, err.Error())
	}
	c.publish()
}

func (c *Controller) handleEditFilename(key int, value string) {
	i := segment.IndexOfKey(c.session.segments, key)
	if i < 0 {
		c.setNotice(NoticeWarning, fmt.Sprintf("%v: %d", ErrUnknownSegment, key))
		c.publish()
		return
	}
	if err := c.session.EditFilename(i, value); err != nil {
		c.setNotice(NoticeWarning, err.Error())
	}
	c.publish()
}

func (c *Controller) handleExport(bitrateKbps int) {
	req, err := c.session.BeginExport(bitrateKbps)
	if errors.Is(err, ErrNothingToExport) {
		c.exports++
		c.setNotice(NoticeWarning, MsgNothingToExport)
		c.publish()
		return
	}
	if err != nil {
		c.exports++
		c.setNotice(NoticeWarning, err.Error())
		c.publish()
		return
	}
	c.setNotice(NoticeInfo, MsgExporting)
	c.publish()

	ctx := c.ctx
	projectID := c.session.ProjectID()
	go func() {
		result, err := c.gateway.Export(ctx, projectID, req)
		c.post(func() { c.exportDone(result, err) })
	}()
}

func (c *Controller) exportDone(result json.RawMessage, err error) {
	c.exports++
	_ = c.session.ExportFinished()
	if err != nil {
		internal.LogWarn("Export failed: %v", err)
		c.exportErr = err.Error()
		c.setNotice(NoticeError, err.Error())
		c.publish()
		return
	}
	c.exportErr = ""
	c.lastExport = result
	c.setNotice(NoticeSuccess, prettyJSON(result))
	c.publish()
}

func (c *Controller) setNotice(level NoticeLevel, text string) {
	c.notice = Notice{Level: level, Text: text}
	if c.renderer != nil {
		c.renderer.Notify(c.notice)
	}
}

func (c *Controller) snapshot() View {
	return View{
		State:      c.session.State(),
		ProjectID:  c.session.ProjectID(),
		Duration:   c.session.Duration(),
		Position:   c.position,
		Markers:    c.session.Markers(),
		Segments:   c.session.Segments(),
		Notice:     c.notice,
		Uploads:    c.uploads,
		Exports:    c.exports,
		LastExport: c.lastExport,
		ExportErr:  c.exportErr,
	}
}

// publish stores a new snapshot, wakes waiters and renders it
func (c *Controller) publish() {
	v := c.snapshot()

	c.mu.Lock()
	c.seq++
	v.Seq = c.seq
	c.view = v
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()

	if c.renderer != nil {
		c.renderer.Render(v)
	}
}

func prettyJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

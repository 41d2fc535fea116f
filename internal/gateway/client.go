// Package gateway is the HTTP client for the audio-splitter backend API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
)

// DefaultTimeout bounds a single API call. Uploads and exports of long
// recordings can take minutes.
const DefaultTimeout = 10 * time.Minute

// Client talks to the backend. The zero value is not usable; use NewClient.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the backend at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// CreateProject uploads the file at path and returns the new project id
func (c *Client) CreateProject(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &internal.GatewayError{Op: "create_project", Err: err}
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", &internal.GatewayError{Op: "create_project", Err: err}
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", &internal.GatewayError{Op: "create_project", Err: err}
	}
	if err := mw.Close(); err != nil {
		return "", &internal.GatewayError{Op: "create_project", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/projects", &body)
	if err != nil {
		return "", &internal.GatewayError{Op: "create_project", Err: err}
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out internal.CreateProjectResponse
	if err := c.do(req, "create_project", &out); err != nil {
		return "", err
	}
	if out.ProjectID == "" {
		return "", &internal.GatewayError{Op: "create_project", Err: fmt.Errorf("response has no project_id")}
	}
	return out.ProjectID, nil
}

// AudioURL returns the URL the project's audio is served from
func (c *Client) AudioURL(projectID string) string {
	return c.baseURL + "/api/projects/" + url.PathEscape(projectID) + "/audio"
}

// Probe returns the duration the backend recorded for the project whose
// audio is served at audioURL.
func (c *Client) Probe(ctx context.Context, audioURL string) (float64, error) {
	id, ok := c.projectIDFromAudioURL(audioURL)
	if !ok {
		return 0, fmt.Errorf("not an audio URL of %s: %s", c.baseURL, audioURL)
	}
	p, err := c.GetProject(ctx, id)
	if err != nil {
		return 0, err
	}
	if p.DurationS <= 0 {
		return 0, fmt.Errorf("backend has no duration for project %s", id)
	}
	return p.DurationS, nil
}

func (c *Client) projectIDFromAudioURL(u string) (string, bool) {
	prefix := c.baseURL + "/api/projects/"
	if !strings.HasPrefix(u, prefix) || !strings.HasSuffix(u, "/audio") {
		return "", false
	}
	id, err := url.PathUnescape(strings.TrimSuffix(strings.TrimPrefix(u, prefix), "/audio"))
	if err != nil || id == "" {
		return "", false
	}
	return id, true
}

// Export asks the backend to cut the segments in req. The raw response body
// is returned so callers can show it as sent.
func (c *Client) Export(ctx context.Context, projectID string, req internal.ExportRequest) (json.RawMessage, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &internal.GatewayError{Op: "export", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.projectURL(projectID)+"/export", bytes.NewReader(body))
	if err != nil {
		return nil, &internal.GatewayError{Op: "export", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out json.RawMessage
	if err := c.do(httpReq, "export", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health checks that the backend is reachable
func (c *Client) Health(ctx context.Context) error {
	var out internal.StatusResponse
	if err := c.get(ctx, "health", c.baseURL+"/api/health", &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return &internal.GatewayError{Op: "health", Err: fmt.Errorf("status %q", out.Status)}
	}
	return nil
}

// ListProjects returns all projects, newest first
func (c *Client) ListProjects(ctx context.Context) ([]internal.Project, error) {
	var out []internal.Project
	if err := c.get(ctx, "list_projects", c.baseURL+"/api/projects", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject returns one project with its last export
func (c *Client) GetProject(ctx context.Context, projectID string) (*internal.Project, error) {
	var out internal.Project
	if err := c.get(ctx, "get_project", c.projectURL(projectID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Waveform returns the project's peak envelope with the given number of points
func (c *Client) Waveform(ctx context.Context, projectID string, points int) (*internal.Waveform, error) {
	u := c.projectURL(projectID) + "/waveform"
	if points > 0 {
		u += "?points=" + strconv.Itoa(points)
	}
	var out internal.Waveform
	if err := c.get(ctx, "waveform", u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject removes a project and its files
func (c *Client) DeleteProject(ctx context.Context, projectID string) error {
	return c.delete(ctx, "delete_project", c.projectURL(projectID))
}

// DeleteAllProjects removes every project
func (c *Client) DeleteAllProjects(ctx context.Context) error {
	return c.delete(ctx, "delete_all_projects", c.baseURL+"/api/projects")
}

func (c *Client) projectURL(projectID string) string {
	return c.baseURL + "/api/projects/" + url.PathEscape(projectID)
}

func (c *Client) get(ctx context.Context, op, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &internal.GatewayError{Op: op, Err: err}
	}
	return c.do(req, op, out)
}

func (c *Client) delete(ctx context.Context, op, u string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return &internal.GatewayError{Op: op, Err: err}
	}
	var out internal.StatusResponse
	return c.do(req, op, &out)
}

// do sends req and decodes a 2xx JSON body into out. Any other status is
// returned as a GatewayError carrying the body text unchanged.
func (c *Client) do(req *http.Request, op string, out interface{}) error {
	internal.LogDebug("%s %s", req.Method, req.URL)

	resp, err := c.http.Do(req)
	if err != nil {
		return &internal.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return &internal.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode >= 300 {
		return &internal.GatewayError{Op: op, Status: resp.StatusCode, Body: string(b)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return &internal.GatewayError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// Detail extracts the "detail" message from an API error, falling back to
// the error text.
func Detail(err error) string {
	var ge *internal.GatewayError
	if !errors.As(err, &ge) || ge.Body == "" {
		return err.Error()
	}
	return DetailText(ge.Body)
}

// DetailText returns the "detail" field of an error body, or body itself
func DetailText(body string) string {
	var er internal.ErrorResponse
	if json.Unmarshal([]byte(body), &er) == nil && er.Detail != "" {
		return er.Detail
	}
	return body
}

package internal

import (
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned by the store for unknown project ids
var ErrProjectNotFound = errors.New("project not found")

// GatewayError is a failed call to the backend API. Error returns the
// response body as sent so it can be shown to the user unchanged.
type GatewayError struct {
	Op     string // "create_project", "export", ...
	Status int
	Body   string
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Body != "" {
		return e.Body
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// StoreError represents errors reading or writing the project database
type StoreError struct {
	Op        string // "create", "get", "list", "delete", "record_export"
	ProjectID string
	Err       error
}

func (e *StoreError) Error() string {
	if e.ProjectID == "" {
		return fmt.Sprintf("store error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.ProjectID, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// MediaError represents a failed ffmpeg or ffprobe invocation
type MediaError struct {
	Op     string // "probe", "cut", "decode"
	Path   string
	Stderr string
	Err    error
}

func (e *MediaError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("media error: %s %s: %v: %s", e.Op, e.Path, e.Err, e.Stderr)
	}
	return fmt.Sprintf("media error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *MediaError) Unwrap() error {
	return e.Err
}

// ValidationError is a rejected request field
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

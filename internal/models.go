package internal

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// Bitrate bounds accepted by the export endpoint, in kbit/s
const (
	MinBitrateKbps     = 64
	MaxBitrateKbps     = 320
	DefaultBitrateKbps = 192
	MaxFilenameLength  = 200
)

// Project is an uploaded audio file and what the backend knows about it
type Project struct {
	ID           string     `json:"project_id" yaml:"project_id"`
	OriginalName string     `json:"original_name" yaml:"original_name"`
	Extension    string     `json:"extension" yaml:"extension"`
	SizeBytes    int64      `json:"size_bytes" yaml:"size_bytes"`
	DurationS    float64    `json:"duration_s" yaml:"duration_s"`
	Tags         AudioTags  `json:"tags" yaml:"tags"`
	CreatedAt    time.Time  `json:"created_at" yaml:"created_at"`
	LastExport   *ExportRun `json:"last_export,omitempty" yaml:"last_export,omitempty"`
}

// AudioTags is the subset of embedded metadata shown for a project
type AudioTags struct {
	Title    string `json:"title,omitempty" yaml:"title,omitempty"`
	Artist   string `json:"artist,omitempty" yaml:"artist,omitempty"`
	Album    string `json:"album,omitempty" yaml:"album,omitempty"`
	Format   string `json:"format,omitempty" yaml:"format,omitempty"`
	FileType string `json:"file_type,omitempty" yaml:"file_type,omitempty"`
}

// DisplayName returns the tag title if present, otherwise the uploaded file name
func (p *Project) DisplayName() string {
	if p.Tags.Title != "" {
		if p.Tags.Artist != "" {
			return p.Tags.Artist + " - " + p.Tags.Title
		}
		return p.Tags.Title
	}
	if p.OriginalName != "" {
		return strings.TrimSuffix(p.OriginalName, filepath.Ext(p.OriginalName))
	}
	return p.ID
}

// ExportRequest is the body posted to the export endpoint
type ExportRequest struct {
	Segments    []segment.Segment `json:"segments" yaml:"segments"`
	BitrateKbps int               `json:"bitrate_kbps" yaml:"bitrate_kbps"`
}

// ExportItem describes one written output file
type ExportItem struct {
	Filename   string `json:"filename" yaml:"filename"`
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// ExportResponse is returned by a successful export
type ExportResponse struct {
	Items []ExportItem `json:"items" yaml:"items"`
}

// ExportRun is a recorded export of a project
type ExportRun struct {
	ID          int64             `json:"id" yaml:"id"`
	ProjectID   string            `json:"project_id" yaml:"project_id"`
	BitrateKbps int               `json:"bitrate_kbps" yaml:"bitrate_kbps"`
	Segments    []segment.Segment `json:"segments" yaml:"segments"`
	Items       []ExportItem      `json:"items" yaml:"items"`
	CreatedAt   time.Time         `json:"created_at" yaml:"created_at"`
}

// CreateProjectResponse is returned by the upload endpoint
type CreateProjectResponse struct {
	ProjectID string `json:"project_id"`
}

// StatusResponse is returned by health and delete endpoints
type StatusResponse struct {
	Status    string `json:"status"`
	ProjectID string `json:"project_id,omitempty"`
}

// ErrorResponse is the JSON body of every non-2xx API response
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Waveform is a downsampled peak envelope of a project's audio
type Waveform struct {
	TimesS []float64 `json:"times_s"`
	Values []float64 `json:"values"`
}

// Manifest describes a segment list independently of any backend
type Manifest struct {
	ProjectID   string            `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	Source      string            `json:"source,omitempty" yaml:"source,omitempty"`
	DurationS   float64           `json:"duration_s" yaml:"duration_s"`
	BitrateKbps int               `json:"bitrate_kbps,omitempty" yaml:"bitrate_kbps,omitempty"`
	Markers     []float64         `json:"markers" yaml:"markers"`
	Segments    []segment.Segment `json:"segments" yaml:"segments"`
	Items       []ExportItem      `json:"items,omitempty" yaml:"items,omitempty"`
}

// ValidateExportRequest checks an export body and applies the default bitrate
func ValidateExportRequest(req *ExportRequest) error {
	if req.BitrateKbps == 0 {
		req.BitrateKbps = DefaultBitrateKbps
	}
	if req.BitrateKbps < MinBitrateKbps || req.BitrateKbps > MaxBitrateKbps {
		return &ValidationError{Field: "bitrate_kbps", Msg: "must be between 64 and 320"}
	}
	if len(req.Segments) == 0 {
		return &ValidationError{Field: "segments", Msg: "at least one segment is required"}
	}
	for i, s := range req.Segments {
		field := func(name string) string { return "segments." + strconv.Itoa(i) + "." + name }
		if s.StartS < 0 {
			return &ValidationError{Field: field("start_s"), Msg: "must be greater than or equal to 0"}
		}
		if s.EndS <= 0 {
			return &ValidationError{Field: field("end_s"), Msg: "must be greater than 0"}
		}
		if s.EndS <= s.StartS {
			return &ValidationError{Field: field("end_s"), Msg: "must be greater than start_s"}
		}
		n := len(s.Filename)
		if n < 1 || n > MaxFilenameLength {
			return &ValidationError{Field: field("filename"), Msg: "must be between 1 and 200 characters"}
		}
	}
	return nil
}

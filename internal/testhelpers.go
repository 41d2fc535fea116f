package internal

import (
	"path/filepath"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// CreateTestProject creates a project record with sample metadata
func CreateTestProject(originalName string) *Project {
	return &Project{
		ID:           NewProjectID(),
		OriginalName: originalName,
		Extension:    filepath.Ext(originalName),
		SizeBytes:    160044,
		DurationS:    10,
		Tags: AudioTags{
			Title:    "Test Take",
			Artist:   "Test Band",
			FileType: "MP3",
		},
		CreatedAt: time.Now().UTC(),
	}
}

// CreateTestManifest creates a manifest with three segments over ten seconds
func CreateTestManifest() *Manifest {
	return &Manifest{
		ProjectID:   "0190b6a0-7c1e-7d4c-9d7e-3b1f0e5a2c11",
		Source:      "take.mp3",
		DurationS:   10,
		BitrateKbps: DefaultBitrateKbps,
		Markers:     []float64{3, 7},
		Segments:    segment.Build([]float64{3, 7}, 10),
	}
}

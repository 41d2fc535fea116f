package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	projectsDirName = "projects"
	cacheDirName    = "cache"
	outputsDirName  = "outputs"
	inputFileName   = "input"
	databaseName    = "audio-splitter.db"
)

// StoragePaths resolves the on-disk layout below the data directory:
//
//	<data>/audio-splitter.db
//	<data>/projects/<id>/input
//	<data>/projects/<id>/outputs/
//	<data>/cache/
type StoragePaths struct {
	DataDir string
}

// NewStoragePaths returns the layout rooted at dataDir, made absolute
func NewStoragePaths(dataDir string) (StoragePaths, error) {
	if dataDir == "" {
		return StoragePaths{}, fmt.Errorf("data directory is empty")
	}
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return StoragePaths{}, fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return StoragePaths{DataDir: abs}, nil
}

// EnsureLayout creates the top-level directories
func (sp StoragePaths) EnsureLayout() error {
	for _, dir := range []string{sp.ProjectsDir(), sp.CacheDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// DatabasePath returns the path of the project database
func (sp StoragePaths) DatabasePath() string {
	return filepath.Join(sp.DataDir, databaseName)
}

// ProjectsDir returns the directory holding one folder per project
func (sp StoragePaths) ProjectsDir() string {
	return filepath.Join(sp.DataDir, projectsDirName)
}

// CacheDir returns the waveform cache directory
func (sp StoragePaths) CacheDir() string {
	return filepath.Join(sp.DataDir, cacheDirName)
}

// ProjectDir returns the folder of a project
func (sp StoragePaths) ProjectDir(projectID string) string {
	return filepath.Join(sp.ProjectsDir(), projectID)
}

// InputPath returns where the uploaded audio of a project is stored
func (sp StoragePaths) InputPath(projectID string) string {
	return filepath.Join(sp.ProjectDir(projectID), inputFileName)
}

// OutputsDir returns the folder exported segments are written to
func (sp StoragePaths) OutputsDir(projectID string) string {
	return filepath.Join(sp.ProjectDir(projectID), outputsDirName)
}

// ProjectExists reports whether the project's input file is on disk
func (sp StoragePaths) ProjectExists(projectID string) bool {
	if !ValidProjectID(projectID) {
		return false
	}
	info, err := os.Stat(sp.InputPath(projectID))
	return err == nil && !info.IsDir()
}

// RemoveProject deletes a project's folder
func (sp StoragePaths) RemoveProject(projectID string) error {
	if !ValidProjectID(projectID) {
		return fmt.Errorf("invalid project id: %q", projectID)
	}
	return os.RemoveAll(sp.ProjectDir(projectID))
}

// RemoveAllProjects deletes every project folder and the cache
func (sp StoragePaths) RemoveAllProjects() error {
	for _, dir := range []string{sp.ProjectsDir(), sp.CacheDir()} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return sp.EnsureLayout()
}

// NewProjectID returns a fresh, time ordered project id
func NewProjectID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidProjectID reports whether id is a UUID. Ids are used as directory
// names so anything else is rejected before touching the filesystem.
func ValidProjectID(id string) bool {
	if strings.TrimSpace(id) == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

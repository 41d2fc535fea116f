package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// CacheManager caches computed waveform envelopes on disk. Entries are
// listed in a YAML index and stay valid while the source audio is unchanged
// and the same number of points is requested.
type CacheManager struct {
	cacheDir string
	mu       sync.Mutex
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// WaveformIndexEntry represents a cached envelope in the index
type WaveformIndexEntry struct {
	ProjectID    string    `yaml:"project_id"`
	InputPath    string    `yaml:"input_path"`
	InputModTime time.Time `yaml:"input_mod_time"`
	InputSize    int64     `yaml:"input_size"`
	Points       int       `yaml:"points"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// WaveformIndex represents the YAML index of all cached envelopes
type WaveformIndex struct {
	Waveforms []WaveformIndexEntry `yaml:"waveforms"`
	Metadata  CacheMetadata        `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetIndexPath returns the path to the waveform index YAML file
func (cm *CacheManager) GetIndexPath() string {
	return filepath.Join(cm.cacheDir, "waveforms.yaml")
}

// GetWaveformPath returns the path to a project's cached envelope
func (cm *CacheManager) GetWaveformPath(projectID string) string {
	return filepath.Join(cm.cacheDir, fmt.Sprintf("waveform_%s.json", projectID))
}

// LoadIndex loads the waveform index
func (cm *CacheManager) LoadIndex() (*WaveformIndex, error) {
	data, err := os.ReadFile(cm.GetIndexPath())
	if err != nil {
		return nil, err
	}

	var index WaveformIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}

	return &index, nil
}

// SaveIndex saves the waveform index
func (cm *CacheManager) SaveIndex(index *WaveformIndex) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	return os.WriteFile(cm.GetIndexPath(), data, 0644)
}

// IsCacheValid checks whether a cached envelope matches the current input file
func (cm *CacheManager) IsCacheValid(projectID, inputPath string, points int) (bool, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.isValidLocked(projectID, inputPath, points)
}

func (cm *CacheManager) isValidLocked(projectID, inputPath string, points int) (bool, error) {
	index, err := cm.LoadIndex()
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	entry := findEntry(index, projectID)
	if entry == nil || entry.Points != points || entry.InputPath != inputPath {
		return false, nil
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return false, nil
	}
	if !entry.InputModTime.Equal(info.ModTime()) || entry.InputSize != info.Size() {
		return false, nil
	}

	if _, err := os.Stat(cm.GetWaveformPath(projectID)); err != nil {
		return false, nil
	}
	return true, nil
}

// LoadWaveform returns the cached envelope if it is still valid. The second
// return value reports a cache hit.
func (cm *CacheManager) LoadWaveform(projectID, inputPath string, points int) (*Waveform, bool, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	valid, err := cm.isValidLocked(projectID, inputPath, points)
	if err != nil || !valid {
		return nil, false, err
	}

	data, err := os.ReadFile(cm.GetWaveformPath(projectID))
	if err != nil {
		return nil, false, err
	}

	var w Waveform
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal waveform: %w", err)
	}
	return &w, true, nil
}

// SaveWaveform stores an envelope and updates the index
func (cm *CacheManager) SaveWaveform(projectID, inputPath string, points int, w *Waveform) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}

	data, err := json.Marshal(w)
	if err != nil {
		return fmt.Errorf("failed to marshal waveform: %w", err)
	}
	if err := os.WriteFile(cm.GetWaveformPath(projectID), data, 0644); err != nil {
		return err
	}

	now := time.Now()
	index, err := cm.LoadIndex()
	if err != nil || index == nil {
		index = &WaveformIndex{
			Waveforms: make([]WaveformIndexEntry, 0, 1),
			Metadata: CacheMetadata{
				CacheVersion: cacheVersion,
				CreatedAt:    now,
			},
		}
	}
	index.Metadata.UpdatedAt = now

	entry := WaveformIndexEntry{
		ProjectID:    projectID,
		InputPath:    inputPath,
		InputModTime: info.ModTime(),
		InputSize:    info.Size(),
		Points:       points,
		UpdatedAt:    now,
	}
	if existing := findEntry(index, projectID); existing != nil {
		*existing = entry
	} else {
		index.Waveforms = append(index.Waveforms, entry)
	}

	return cm.SaveIndex(index)
}

// Invalidate removes a project's cached envelope
func (cm *CacheManager) Invalidate(projectID string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	_ = os.Remove(cm.GetWaveformPath(projectID))

	index, err := cm.LoadIndex()
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	kept := index.Waveforms[:0]
	for _, e := range index.Waveforms {
		if e.ProjectID != projectID {
			kept = append(kept, e)
		}
	}
	index.Waveforms = kept
	index.Metadata.UpdatedAt = time.Now()
	return cm.SaveIndex(index)
}

// ClearCache clears the cache
func (cm *CacheManager) ClearCache() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	index, err := cm.LoadIndex()
	if err == nil {
		for _, entry := range index.Waveforms {
			_ = os.Remove(cm.GetWaveformPath(entry.ProjectID))
		}
	}

	if err := os.Remove(cm.GetIndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func findEntry(index *WaveformIndex, projectID string) *WaveformIndexEntry {
	for i := range index.Waveforms {
		if index.Waveforms[i].ProjectID == projectID {
			return &index.Waveforms[i]
		}
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/ChristianPRO1982/audio-splitter/internal/export"
	"github.com/ChristianPRO1982/audio-splitter/internal/media"
	"github.com/ChristianPRO1982/audio-splitter/internal/segment"
)

// Error details returned to clients
const (
	DetailNoExtension     = "File must have an extension"
	DetailMissingFile     = "Missing file"
	DetailFileTooLarge    = "File too large"
	DetailProjectNotFound = "Project not found"
	DetailAudioNotFound   = "Audio not found"
	DetailInputNotFound   = "Project input file not found"
)

// ManifestName is written to a project's outputs folder after each export
const ManifestName = "manifest.yaml"

// MaxWaveformPoints bounds the points query parameter
const MaxWaveformPoints = 20000

const multipartMemory = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		internal.LogWarn("Failed to write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, internal.ErrorResponse{Detail: detail})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, internal.StatusResponse{Status: "ok"})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.MaxUploadBytes()
	if r.ContentLength > limit {
		writeError(w, http.StatusRequestEntityTooLarge, DetailFileTooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, DetailFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, DetailMissingFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, DetailMissingFile)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		writeError(w, http.StatusBadRequest, DetailNoExtension)
		return
	}

	id := internal.NewProjectID()
	if err := os.MkdirAll(s.paths.ProjectDir(id), 0755); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	input := s.paths.InputPath(id)
	size, err := saveUpload(file, input)
	if err != nil {
		_ = s.paths.RemoveProject(id)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	project := &internal.Project{
		ID:           id,
		OriginalName: filepath.Base(header.Filename),
		Extension:    ext,
		SizeBytes:    size,
		Tags:         s.tagsFor(input),
		CreatedAt:    time.Now().UTC(),
	}

	duration, err := s.enc.Probe(r.Context(), input)
	if err != nil {
		internal.LogWarn("Could not probe %s: %v", project.OriginalName, err)
	} else {
		project.DurationS = duration
	}

	if err := s.store.CreateProject(project); err != nil {
		_ = s.paths.RemoveProject(id)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	internal.LogInfo("Created project %s from %s (%s)", id, project.OriginalName, internal.FormatBytes(size))
	writeJSON(w, http.StatusOK, internal.CreateProjectResponse{ProjectID: id})
}

func saveUpload(src io.Reader, dst string) (int64, error) {
	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	n, err := io.Copy(f, src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to store upload: %w", err)
	}
	return n, nil
}

// tagsFor reads embedded tags, falling back to the sniffed container type
func (s *Server) tagsFor(path string) internal.AudioTags {
	tags, err := s.readTags(path)
	if err == nil {
		return tags
	}
	internal.LogDebug("No tags in %s: %v", path, err)
	if ft, err := media.SniffFileType(path); err == nil {
		tags.FileType = ft
	}
	return tags
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// lookup loads the project named in the path, writing a 404 when unknown
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*internal.Project, bool) {
	id := r.PathValue("id")
	if !internal.ValidProjectID(id) {
		writeError(w, http.StatusNotFound, DetailProjectNotFound)
		return nil, false
	}
	project, err := s.store.GetProject(id)
	if errors.Is(err, internal.ErrProjectNotFound) {
		writeError(w, http.StatusNotFound, DetailProjectNotFound)
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return project, true
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.paths.ProjectExists(id) {
		writeError(w, http.StatusNotFound, DetailAudioNotFound)
		return
	}

	file, err := os.Open(s.paths.InputPath(id))
	if err != nil {
		writeError(w, http.StatusNotFound, DetailAudioNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	name := "input"
	if project, err := s.store.GetProject(id); err == nil {
		name = project.OriginalName
		w.Header().Set("Content-Type", ContentType(project.Extension))
	}
	http.ServeContent(w, r, name, stat.ModTime(), file)
}

// ContentType maps an audio file extension to its MIME type
func ContentType(ext string) string {
	switch strings.ToLower(ext) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".ogg", ".oga", ".opus":
		return "audio/ogg"
	case ".flac":
		return "audio/flac"
	case ".wav":
		return "audio/wav"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) handleWaveform(w http.ResponseWriter, r *http.Request) {
	project, ok := s.lookup(w, r)
	if !ok {
		return
	}

	points := s.cfg.WaveformPoints
	if q := r.URL.Query().Get("points"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > MaxWaveformPoints {
			writeError(w, http.StatusUnprocessableEntity,
				fmt.Sprintf("points: must be between 1 and %d", MaxWaveformPoints))
			return
		}
		points = n
	}

	input := s.paths.InputPath(project.ID)
	if !s.paths.ProjectExists(project.ID) {
		writeError(w, http.StatusNotFound, DetailAudioNotFound)
		return
	}

	if wf, hit, err := s.cache.LoadWaveform(project.ID, input, points); err != nil {
		internal.LogWarn("Waveform cache read failed for %s: %v", project.ID, err)
	} else if hit {
		writeJSON(w, http.StatusOK, wf)
		return
	}

	duration := project.DurationS
	if duration <= 0 {
		duration = math.NaN()
	}
	wf, err := s.enc.BuildEnvelope(r.Context(), input, duration, points)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.cache.SaveWaveform(project.ID, input, points, wf); err != nil {
		internal.LogWarn("Waveform cache write failed for %s: %v", project.ID, err)
	}
	writeJSON(w, http.StatusOK, wf)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req internal.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if err := internal.ValidateExportRequest(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	project, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.paths.ProjectExists(project.ID) {
		writeError(w, http.StatusNotFound, DetailInputNotFound)
		return
	}

	outputs := s.paths.OutputsDir(project.ID)
	if err := os.MkdirAll(outputs, 0755); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	src := s.paths.InputPath(project.ID)
	items := make([]internal.ExportItem, 0, len(req.Segments))
	for i, seg := range req.Segments {
		name := segment.SanitizeFilename(seg.Filename)
		dst := filepath.Join(outputs, name)
		if err := s.enc.Cut(r.Context(), src, dst, seg, req.BitrateKbps); err != nil {
			internal.LogError("Export of %s failed at segment %d: %v", project.ID, i, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		items = append(items, internal.ExportItem{Filename: name, OutputPath: dst})
	}

	run := &internal.ExportRun{
		ProjectID:   project.ID,
		BitrateKbps: req.BitrateKbps,
		Segments:    req.Segments,
		Items:       items,
	}
	if err := s.store.RecordExport(run); err != nil {
		internal.LogWarn("Could not record export of %s: %v", project.ID, err)
	}
	s.writeManifest(project, run)

	internal.LogInfo("Exported %d segments of %s at %d kbps", len(items), project.ID, req.BitrateKbps)
	writeJSON(w, http.StatusOK, internal.ExportResponse{Items: items})
}

func (s *Server) writeManifest(project *internal.Project, run *internal.ExportRun) {
	markers := make([]float64, 0, len(run.Segments))
	for i, seg := range run.Segments {
		if i > 0 {
			markers = append(markers, seg.StartS)
		}
	}
	m := &internal.Manifest{
		ProjectID:   project.ID,
		Source:      project.OriginalName,
		DurationS:   project.DurationS,
		BitrateKbps: run.BitrateKbps,
		Markers:     markers,
		Segments:    run.Segments,
		Items:       run.Items,
	}
	path := filepath.Join(s.paths.OutputsDir(project.ID), ManifestName)
	if err := export.WriteFile(&export.YAMLExporter{}, m, path); err != nil {
		internal.LogWarn("Could not write manifest: %v", err)
	}
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !internal.ValidProjectID(id) {
		writeError(w, http.StatusNotFound, DetailProjectNotFound)
		return
	}

	err := s.store.DeleteProject(id)
	switch {
	case errors.Is(err, internal.ErrProjectNotFound):
		if _, statErr := os.Stat(s.paths.ProjectDir(id)); statErr != nil {
			writeError(w, http.StatusNotFound, DetailProjectNotFound)
			return
		}
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.paths.RemoveProject(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.cache.Invalidate(id); err != nil {
		internal.LogWarn("Could not invalidate cache for %s: %v", id, err)
	}

	internal.LogInfo("Deleted project %s", id)
	writeJSON(w, http.StatusOK, internal.StatusResponse{Status: "deleted", ProjectID: id})
}

func (s *Server) handleDeleteAllProjects(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.DeleteAllProjects()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.paths.RemoveAllProjects(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	internal.LogInfo("Deleted all projects (%d records)", n)
	writeJSON(w, http.StatusOK, internal.StatusResponse{Status: "all_projects_deleted"})
}

package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Store persists projects and their export history
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store over an opened, migrated database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateProject inserts a project record
func (s *Store) CreateProject(p *Project) error {
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return &StoreError{Op: "create", ProjectID: p.ID, Err: err}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT INTO projects (id, original_name, extension, size_bytes, duration_s, tags, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.OriginalName, p.Extension, p.SizeBytes, p.DurationS, string(tags), p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return &StoreError{Op: "create", ProjectID: p.ID, Err: err}
	}
	return nil
}

// GetProject loads a project with its most recent export
func (s *Store) GetProject(id string) (*Project, error) {
	row := s.db.QueryRow(
		`SELECT id, original_name, extension, size_bytes, duration_s, tags, created_at
		 FROM projects WHERE id = ?`, id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &StoreError{Op: "get", ProjectID: id, Err: ErrProjectNotFound}
	}
	if err != nil {
		return nil, &StoreError{Op: "get", ProjectID: id, Err: err}
	}

	last, err := s.LastExport(id)
	if err != nil {
		return nil, err
	}
	p.LastExport = last
	return p, nil
}

// ListProjects returns all projects, newest first
func (s *Store) ListProjects() ([]*Project, error) {
	rows, err := s.db.Query(
		`SELECT id, original_name, extension, size_bytes, duration_s, tags, created_at
		 FROM projects ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	projects := make([]*Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: fmt.Errorf("scan failed: %w", err)}
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: fmt.Errorf("rows iteration error: %w", err)}
	}
	return projects, nil
}

// DeleteProject removes a project and its export history
func (s *Store) DeleteProject(id string) error {
	if _, err := s.db.Exec(`DELETE FROM exports WHERE project_id = ?`, id); err != nil {
		return &StoreError{Op: "delete", ProjectID: id, Err: err}
	}
	res, err := s.db.Exec(`DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return &StoreError{Op: "delete", ProjectID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete", ProjectID: id, Err: err}
	}
	if n == 0 {
		return &StoreError{Op: "delete", ProjectID: id, Err: ErrProjectNotFound}
	}
	return nil
}

// DeleteAllProjects empties the store and returns how many projects were removed
func (s *Store) DeleteAllProjects() (int64, error) {
	if _, err := s.db.Exec(`DELETE FROM exports`); err != nil {
		return 0, &StoreError{Op: "delete_all", Err: err}
	}
	res, err := s.db.Exec(`DELETE FROM projects`)
	if err != nil {
		return 0, &StoreError{Op: "delete_all", Err: err}
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// RecordExport stores a finished export for a project
func (s *Store) RecordExport(run *ExportRun) error {
	segs, err := json.Marshal(run.Segments)
	if err != nil {
		return &StoreError{Op: "record_export", ProjectID: run.ProjectID, Err: err}
	}
	items, err := json.Marshal(run.Items)
	if err != nil {
		return &StoreError{Op: "record_export", ProjectID: run.ProjectID, Err: err}
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	res, err := s.db.Exec(
		`INSERT INTO exports (project_id, bitrate_kbps, segments, items, created_at) VALUES (?, ?, ?, ?, ?)`,
		run.ProjectID, run.BitrateKbps, string(segs), string(items), run.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return &StoreError{Op: "record_export", ProjectID: run.ProjectID, Err: err}
	}
	if id, err := res.LastInsertId(); err == nil {
		run.ID = id
	}
	return nil
}

// LastExport returns the most recent export of a project, or nil if there is none
func (s *Store) LastExport(projectID string) (*ExportRun, error) {
	row := s.db.QueryRow(
		`SELECT id, project_id, bitrate_kbps, segments, items, created_at
		 FROM exports WHERE project_id = ? ORDER BY id DESC LIMIT 1`, projectID)

	var (
		run       ExportRun
		segs      string
		items     string
		createdAt int64
	)
	err := row.Scan(&run.ID, &run.ProjectID, &run.BitrateKbps, &segs, &items, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &StoreError{Op: "last_export", ProjectID: projectID, Err: err}
	}
	if err := json.Unmarshal([]byte(segs), &run.Segments); err != nil {
		return nil, &StoreError{Op: "last_export", ProjectID: projectID, Err: fmt.Errorf("failed to parse segments: %w", err)}
	}
	if err := json.Unmarshal([]byte(items), &run.Items); err != nil {
		return nil, &StoreError{Op: "last_export", ProjectID: projectID, Err: fmt.Errorf("failed to parse items: %w", err)}
	}
	run.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &run, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*Project, error) {
	var (
		p         Project
		tags      string
		createdAt int64
	)
	if err := row.Scan(&p.ID, &p.OriginalName, &p.Extension, &p.SizeBytes, &p.DurationS, &tags, &createdAt); err != nil {
		return nil, err
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			LogWarn("Ignoring unreadable tags for project %s: %v", p.ID, err)
		}
	}
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &p, nil
}

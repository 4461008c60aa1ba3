package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"siteforge/internal/models"
)

// SQLiteStore persists projects and their file sets in a local SQLite
// database. Projects and files live in two tables linked by project id;
// loading a project reconstructs the flat file set, from which the tree
// is derived via each file's parent id.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbDir, dbFile string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			last_modified INTEGER NOT NULL,
			thumbnail TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name TEXT NOT NULL,
			content TEXT NOT NULL,
			kind TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			is_directory BOOLEAN NOT NULL DEFAULT 0,
			is_open BOOLEAN NOT NULL DEFAULT 0,
			FOREIGN KEY (project_id) REFERENCES projects(id)
		);

		CREATE INDEX IF NOT EXISTS idx_files_project ON files(project_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// ProjectAdd inserts a project and its complete file set.
func (s *SQLiteStore) ProjectAdd(p *models.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO projects (id, name, type, last_modified, thumbnail) VALUES (?, ?, ?, ?, ?)",
		p.ID, p.Name, string(p.Type), p.LastModified, p.Thumbnail,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	if err := insertFiles(tx, p); err != nil {
		return err
	}

	return tx.Commit()
}

// ProjectGet loads a single project with its file set.
func (s *SQLiteStore) ProjectGet(id string) (*models.Project, error) {
	p := &models.Project{Files: make(map[string]*models.File)}
	var projectType string
	err := s.db.QueryRow(
		"SELECT id, name, type, last_modified, thumbnail FROM projects WHERE id = ?", id,
	).Scan(&p.ID, &p.Name, &projectType, &p.LastModified, &p.Thumbnail)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project: %w", err)
	}
	p.Type = models.ProjectType(projectType)

	if err := s.loadFiles(p); err != nil {
		return nil, err
	}

	return p, nil
}

// ProjectGetAll loads every stored project.
func (s *SQLiteStore) ProjectGetAll() ([]*models.Project, error) {
	rows, err := s.db.Query("SELECT id, name, type, last_modified, thumbnail FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{Files: make(map[string]*models.File)}
		var projectType string
		if err := rows.Scan(&p.ID, &p.Name, &projectType, &p.LastModified, &p.Thumbnail); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Type = models.ProjectType(projectType)
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range projects {
		if err := s.loadFiles(p); err != nil {
			return nil, err
		}
	}

	return projects, nil
}

// ProjectUpdate replaces a project's row and its entire file set. The file
// set is rewritten wholesale since callers hand over complete snapshots.
func (s *SQLiteStore) ProjectUpdate(p *models.Project) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		"UPDATE projects SET name = ?, type = ?, last_modified = ?, thumbnail = ? WHERE id = ?",
		p.Name, string(p.Type), p.LastModified, p.Thumbnail, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", models.ErrProjectNotFound, p.ID)
	}

	if _, err := tx.Exec("DELETE FROM files WHERE project_id = ?", p.ID); err != nil {
		return fmt.Errorf("failed to clear files: %w", err)
	}
	if err := insertFiles(tx, p); err != nil {
		return err
	}

	return tx.Commit()
}

// ProjectDelete removes a project and all of its files.
func (s *SQLiteStore) ProjectDelete(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete files: %w", err)
	}

	result, err := tx.Exec("DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}

	return tx.Commit()
}

func (s *SQLiteStore) loadFiles(p *models.Project) error {
	rows, err := s.db.Query(
		"SELECT id, name, content, kind, parent_id, is_directory, is_open FROM files WHERE project_id = ?",
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		f := &models.File{}
		var kind string
		if err := rows.Scan(&f.ID, &f.Name, &f.Content, &kind, &f.ParentID, &f.IsDirectory, &f.IsOpen); err != nil {
			return fmt.Errorf("failed to scan file: %w", err)
		}
		f.Kind = models.FileKind(kind)
		p.Files[f.ID] = f
	}

	return rows.Err()
}

func insertFiles(tx *sql.Tx, p *models.Project) error {
	for _, f := range p.Files {
		_, err := tx.Exec(
			"INSERT INTO files (id, project_id, name, content, kind, parent_id, is_directory, is_open) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			f.ID, p.ID, f.Name, f.Content, string(f.Kind), f.ParentID, f.IsDirectory, f.IsOpen,
		)
		if err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Name, err)
		}
	}
	return nil
}

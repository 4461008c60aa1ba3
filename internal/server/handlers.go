package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siteforge/internal/archive"
	"siteforge/internal/merge"
	"siteforge/internal/models"
)

func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.pm.ProjectList())
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectType := models.ProjectType(req.Type)
	if projectType == "" {
		projectType = models.ProjectHTML
	}

	project, err := s.pm.ProjectAdd(req.Name, projectType)
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, project)
}

func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	project, err := s.pm.ProjectGet(chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.pm.ProjectDelete(chi.URLParam(r, "projectID")); err != nil {
		s.respondForError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProjectRename(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "projectID")
	if err := s.pm.ProjectRename(id, req.Name); err != nil {
		s.respondForError(w, err)
		return
	}

	project, err := s.pm.ProjectGet(id)
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, project)
}

func (s *Server) handleProjectDuplicate(w http.ResponseWriter, r *http.Request) {
	dup, err := s.pm.ProjectDuplicate(chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, dup)
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	project, err := s.pm.ProjectGet(chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondForError(w, err)
		return
	}

	parentID := r.URL.Query().Get("parent")
	if parentID == "" {
		parentID = models.RootID
	}

	files, err := s.fm.FileList(project, parentID)
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, files)
}

func (s *Server) handleFileCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID    string `json:"parentId"`
		Name        string `json:"name"`
		Content     string `json:"content"`
		IsDirectory bool   `json:"isDirectory"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ParentID == "" {
		req.ParentID = models.RootID
	}

	var file *models.File
	err := s.pm.ProjectMutate(chi.URLParam(r, "projectID"), func(p *models.Project) error {
		var err error
		file, err = s.fm.FileAdd(p, req.ParentID, req.Name, req.Content, req.IsDirectory)
		return err
	})
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, file)
}

func (s *Server) handleFileUpdate(w http.ResponseWriter, r *http.Request) {
	fileID := chi.URLParam(r, "fileID")

	var req struct {
		Name     *string `json:"name"`
		Content  *string `json:"content"`
		ParentID *string `json:"parentId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The sub-operations run against a clone inside ProjectMutate, so a
	// failure partway through leaves nothing applied.
	var file *models.File
	err := s.pm.ProjectMutate(chi.URLParam(r, "projectID"), func(p *models.Project) error {
		if req.Name != nil {
			if err := s.fm.FileRename(p, fileID, *req.Name); err != nil {
				return err
			}
		}
		if req.Content != nil {
			if err := s.fm.FileUpdateContent(p, fileID, *req.Content); err != nil {
				return err
			}
		}
		if req.ParentID != nil {
			if err := s.fm.FileMove(p, fileID, *req.ParentID); err != nil {
				return err
			}
		}
		var err error
		file, err = s.fm.FileGet(p, fileID)
		return err
	})
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, file)
}

func (s *Server) handleFileDelete(w http.ResponseWriter, r *http.Request) {
	err := s.pm.ProjectMutate(chi.URLParam(r, "projectID"), func(p *models.Project) error {
		return s.fm.FileDelete(p, chi.URLParam(r, "fileID"))
	})
	if err != nil {
		s.respondForError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleExport serializes a point-in-time copy of the project, so edits
// arriving mid-archive cannot change the tree being written.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	project, err := s.pm.ProjectSnapshot(chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondForError(w, err)
		return
	}

	blob, err := s.exporter.Export(project)
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondArchive(w, archive.SanitizeName(project.Name), blob)
}

func (s *Server) handleExportMerged(w http.ResponseWriter, r *http.Request) {
	project, err := s.pm.ProjectSnapshot(chi.URLParam(r, "projectID"))
	if err != nil {
		s.respondForError(w, err)
		return
	}

	blob, err := merge.Export(s.exporter, project)
	if err != nil {
		s.respondForError(w, err)
		return
	}
	respondArchive(w, archive.SanitizeName(project.Name), blob)
}

func respondArchive(w http.ResponseWriter, name string, blob []byte) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, name+".zip"))
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondForError maps the typed errors from the core onto HTTP statuses.
// The core never presents messages itself; this boundary does.
func (s *Server) respondForError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrProjectNotFound):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrInvalidParent),
		errors.Is(err, models.ErrInvalidName),
		errors.Is(err, models.ErrIsDirectory),
		errors.Is(err, models.ErrMissingEntryPoint),
		errors.Is(err, models.ErrMalformedDataURI),
		errors.Is(err, models.ErrNoProject):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateName),
		errors.Is(err, models.ErrCycleDetected),
		errors.Is(err, models.ErrExportInProgress):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error().Err(err).Msg("internal error")
	}
	respondError(w, status, err.Error())
}

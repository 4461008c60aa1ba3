package data

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"siteforge/internal/models"
	"siteforge/internal/storage"
)

// ProjectOperations defines the interface for project-level operations.
type ProjectOperations interface {
	ProjectAdd(name string, projectType models.ProjectType) (*models.Project, error)
	ProjectDelete(id string) error
	ProjectSelect(id string) (*models.Project, error)
	ProjectReset()
	ProjectGet(id string) (*models.Project, error)
	ProjectSnapshot(id string) (*models.Project, error)
	ProjectList() []*models.Project
	ProjectRename(id, newName string) error
	ProjectDuplicate(id string) (*models.Project, error)
	ProjectMutate(id string, fn func(p *models.Project) error) error
	ProjectSave(p *models.Project) error
}

// ProjectManager handles all project-level operations and maintains the
// current project selection. Persistence goes through the wired-in store;
// file mutations themselves never touch it.
//
// The mutex guards the project map and the selection. Mutations that go
// through ProjectMutate or ProjectRename never write an installed project:
// they work on a clone and swap it in on success, so a pointer handed out
// under the read lock stays safe to read. Mutating a returned project
// directly (the shell does this) is only safe for single-goroutine callers.
type ProjectManager struct {
	store storage.ProjectStore

	mu       sync.RWMutex
	projects map[string]*models.Project
	current  *models.Project
}

// NewProjectManager creates a manager and loads every stored project.
func NewProjectManager(store storage.ProjectStore) (*ProjectManager, error) {
	pm := &ProjectManager{
		store:    store,
		projects: make(map[string]*models.Project),
	}

	projects, err := store.ProjectGetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}
	for _, p := range projects {
		pm.projects[p.ID] = p
	}

	return pm, nil
}

// ProjectAdd creates a new empty project and persists it.
func (pm *ProjectManager) ProjectAdd(name string, projectType models.ProjectType) (*models.Project, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidName
	}

	project := models.NewProject(name, projectType)
	if err := pm.store.ProjectAdd(project); err != nil {
		return nil, fmt.Errorf("failed to add project to storage: %w", err)
	}
	pm.projects[project.ID] = project

	return project, nil
}

// ProjectDelete removes a project and all its files from storage. If the
// deleted project was selected, the selection is reset.
func (pm *ProjectManager) ProjectDelete(id string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if _, exists := pm.projects[id]; !exists {
		return fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}

	if err := pm.store.ProjectDelete(id); err != nil {
		return fmt.Errorf("failed to delete project from storage: %w", err)
	}
	delete(pm.projects, id)

	if pm.current != nil && pm.current.ID == id {
		pm.current = nil
	}

	return nil
}

// ProjectSelect sets the current project.
func (pm *ProjectManager) ProjectSelect(id string) (*models.Project, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	project, exists := pm.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	pm.current = project
	return project, nil
}

// ProjectReset clears the current project selection.
func (pm *ProjectManager) ProjectReset() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.current = nil
}

// Current returns the selected project, or nil.
func (pm *ProjectManager) Current() *models.Project {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.current
}

// ProjectGet returns the project with the given id.
func (pm *ProjectManager) ProjectGet(id string) (*models.Project, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	project, exists := pm.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	return project, nil
}

// ProjectSnapshot returns a deep copy of the project, decoupled from any
// later mutation. Export paths read it without holding a lock.
func (pm *ProjectManager) ProjectSnapshot(id string) (*models.Project, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	project, exists := pm.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}
	return project.Clone(), nil
}

// ProjectList returns all projects ordered by name.
func (pm *ProjectManager) ProjectList() []*models.Project {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	projects := make([]*models.Project, 0, len(pm.projects))
	for _, p := range pm.projects {
		projects = append(projects, p)
	}
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Name != projects[j].Name {
			return projects[i].Name < projects[j].Name
		}
		return projects[i].ID < projects[j].ID
	})
	return projects
}

// ProjectRename changes a project's display name and persists it.
func (pm *ProjectManager) ProjectRename(id, newName string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	project, exists := pm.projects[id]
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return models.ErrInvalidName
	}

	clone := project.Clone()
	clone.Name = newName
	clone.Touch()

	if err := pm.store.ProjectUpdate(clone); err != nil {
		return fmt.Errorf("failed to rename project in storage: %w", err)
	}
	pm.install(clone)

	return nil
}

// ProjectDuplicate deep-copies a project. Every file gets a freshly
// generated id so the copy's id set is disjoint from the original's, while
// the parent/child structure is preserved through an old-to-new id map.
func (pm *ProjectManager) ProjectDuplicate(id string) (*models.Project, error) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	src, exists := pm.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}

	dup := models.NewProject(src.Name+" copy", src.Type)
	dup.Thumbnail = src.Thumbnail

	idMap := make(map[string]string, len(src.Files))
	for fileID := range src.Files {
		idMap[fileID] = uuid.NewString()
	}

	for fileID, f := range src.Files {
		copied := *f
		copied.ID = idMap[fileID]
		if f.ParentID != models.RootID {
			newParent, ok := idMap[f.ParentID]
			if !ok {
				return nil, fmt.Errorf("%w: parent %s of %s", models.ErrTreeCorrupted, f.ParentID, f.Name)
			}
			copied.ParentID = newParent
		}
		dup.Files[copied.ID] = &copied
	}

	if err := pm.store.ProjectAdd(dup); err != nil {
		return nil, fmt.Errorf("failed to add duplicated project to storage: %w", err)
	}
	pm.projects[dup.ID] = dup

	return dup, nil
}

// ProjectMutate applies fn to a clone of the project and, only when fn and
// persistence both succeed, swaps the clone in as the live version. A failed
// mutation leaves the in-memory state and the store untouched, so multi-step
// mutations are all-or-nothing. Readers holding earlier pointers are
// unaffected: this path never writes an installed project.
func (pm *ProjectManager) ProjectMutate(id string, fn func(p *models.Project) error) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	project, exists := pm.projects[id]
	if !exists {
		return fmt.Errorf("%w: %s", models.ErrProjectNotFound, id)
	}

	clone := project.Clone()
	if err := fn(clone); err != nil {
		return err
	}
	if err := pm.store.ProjectUpdate(clone); err != nil {
		return fmt.Errorf("failed to save project to storage: %w", err)
	}
	pm.install(clone)

	return nil
}

// install replaces the stored project, and the selection when it points at
// the same project, with the given version. Callers hold the write lock.
func (pm *ProjectManager) install(p *models.Project) {
	pm.projects[p.ID] = p
	if pm.current != nil && pm.current.ID == p.ID {
		pm.current = p
	}
}

// ProjectSave persists a project snapshot. Callers invoke it after file
// mutations; the file manager itself never writes to storage.
func (pm *ProjectManager) ProjectSave(p *models.Project) error {
	if p == nil {
		return models.ErrNoProject
	}
	if err := pm.store.ProjectUpdate(p); err != nil {
		return fmt.Errorf("failed to save project to storage: %w", err)
	}
	return nil
}

package data

import (
	"fmt"
	"strings"

	"siteforge/internal/models"
)

// FileOperations defines the interface for file tree mutations. Every
// operation works on an explicit project snapshot: the caller owns the
// snapshot for the duration of the call and is responsible for persisting
// it afterwards. Structural violations are rejected before any state change.
type FileOperations interface {
	FileAdd(p *models.Project, parentID, name, content string, isDirectory bool) (*models.File, error)
	FileDelete(p *models.Project, id string) error
	FileRename(p *models.Project, id, newName string) error
	FileMove(p *models.Project, id, newParentID string) error
	FileUpdateContent(p *models.Project, id, content string) error
	FileList(p *models.Project, parentID string) ([]*models.File, error)
	FileGet(p *models.Project, id string) (*models.File, error)
}

// FileManager implements FileOperations over the parent-linked file set.
type FileManager struct{}

func NewFileManager() *FileManager {
	return &FileManager{}
}

// FileAdd creates a new file or directory under parentID and inserts it
// into the project's file set. The file kind is derived from the name.
func (fm *FileManager) FileAdd(p *models.Project, parentID, name, content string, isDirectory bool) (*models.File, error) {
	if p == nil {
		return nil, models.ErrNoProject
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.ErrInvalidName
	}

	if err := fm.checkParent(p, parentID); err != nil {
		return nil, err
	}

	if fm.siblingExists(p, parentID, name, "") {
		return nil, fmt.Errorf("%w: %q", models.ErrDuplicateName, name)
	}

	file := models.NewFile(name, content, models.KindForName(name), parentID, isDirectory)
	p.Files[file.ID] = file
	p.Touch()

	return file, nil
}

// FileDelete removes the file with the given id. Deleting a directory
// removes every descendant first (post-order), so no file with a dangling
// ParentID is ever observable.
func (fm *FileManager) FileDelete(p *models.Project, id string) error {
	if p == nil {
		return models.ErrNoProject
	}

	file := p.FileByID(id)
	if file == nil {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	var doomed []*models.File
	if err := collectSubtree(p, file, &doomed, 0); err != nil {
		return err
	}

	for _, f := range doomed {
		delete(p.Files, f.ID)
	}
	delete(p.Files, file.ID)
	p.Touch()

	return nil
}

// FileRename changes a file's display name. Children are unaffected since
// links are by id, not name.
func (fm *FileManager) FileRename(p *models.Project, id, newName string) error {
	if p == nil {
		return models.ErrNoProject
	}

	file := p.FileByID(id)
	if file == nil {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return models.ErrInvalidName
	}

	if fm.siblingExists(p, file.ParentID, newName, file.ID) {
		return fmt.Errorf("%w: %q", models.ErrDuplicateName, newName)
	}

	file.Name = newName
	if !file.IsDirectory {
		file.Kind = models.KindForName(newName)
	}
	p.Touch()

	return nil
}

// FileMove re-parents a file. Moving a directory into itself or any of its
// descendants is rejected, keeping the parent graph acyclic.
func (fm *FileManager) FileMove(p *models.Project, id, newParentID string) error {
	if p == nil {
		return models.ErrNoProject
	}

	file := p.FileByID(id)
	if file == nil {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}

	if newParentID == id {
		return models.ErrCycleDetected
	}
	if err := fm.checkParent(p, newParentID); err != nil {
		return err
	}
	if newParentID != models.RootID {
		cyclic, err := isDescendant(p, id, newParentID)
		if err != nil {
			return err
		}
		if cyclic {
			return models.ErrCycleDetected
		}
	}

	if fm.siblingExists(p, newParentID, file.Name, file.ID) {
		return fmt.Errorf("%w: %q", models.ErrDuplicateName, file.Name)
	}

	file.ParentID = newParentID
	p.Touch()

	return nil
}

// FileUpdateContent replaces a file's content. Directories carry no content.
func (fm *FileManager) FileUpdateContent(p *models.Project, id, content string) error {
	if p == nil {
		return models.ErrNoProject
	}

	file := p.FileByID(id)
	if file == nil {
		return fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	if file.IsDirectory {
		return models.ErrIsDirectory
	}

	file.Content = content
	p.Touch()

	return nil
}

// FileList returns the ordered children of parentID (see ChildrenOf).
func (fm *FileManager) FileList(p *models.Project, parentID string) ([]*models.File, error) {
	if p == nil {
		return nil, models.ErrNoProject
	}
	return ChildrenOf(p, parentID), nil
}

// FileGet returns the file with the given id.
func (fm *FileManager) FileGet(p *models.Project, id string) (*models.File, error) {
	if p == nil {
		return nil, models.ErrNoProject
	}
	file := p.FileByID(id)
	if file == nil {
		return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
	}
	return file, nil
}

// checkParent verifies that parentID is either the root sentinel or the id
// of an existing directory in the project.
func (fm *FileManager) checkParent(p *models.Project, parentID string) error {
	if parentID == models.RootID {
		return nil
	}
	parent := p.FileByID(parentID)
	if parent == nil || !parent.IsDirectory {
		return fmt.Errorf("%w: %s", models.ErrInvalidParent, parentID)
	}
	return nil
}

// siblingExists reports whether a file other than excludeID with the given
// name already sits under parentID.
func (fm *FileManager) siblingExists(p *models.Project, parentID, name, excludeID string) bool {
	for _, f := range p.Files {
		if f.ParentID == parentID && f.Name == name && f.ID != excludeID {
			return true
		}
	}
	return false
}

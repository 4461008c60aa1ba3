package models

import (
	"time"

	"github.com/google/uuid"
)

// ProjectType identifies the flavor of web project being built.
type ProjectType string

const (
	ProjectHTML ProjectType = "html"
	ProjectPHP  ProjectType = "php"
)

// Project aggregates the flat set of files belonging to one buildable site.
// Parent/child relationships are reconstructed from each file's ParentID;
// insertion order carries no meaning.
type Project struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Type         ProjectType      `json:"type"`
	LastModified int64            `json:"lastModified"`
	Files        map[string]*File `json:"files"`
	Thumbnail    string           `json:"thumbnail,omitempty"`
}

func NewProject(name string, projectType ProjectType) *Project {
	return &Project{
		ID:           uuid.NewString(),
		Name:         name,
		Type:         projectType,
		LastModified: time.Now().UnixMilli(),
		Files:        make(map[string]*File),
	}
}

// Touch bumps the project's modification timestamp.
func (p *Project) Touch() {
	p.LastModified = time.Now().UnixMilli()
}

// FileByID returns the file with the given id, or nil.
func (p *Project) FileByID(id string) *File {
	return p.Files[id]
}

// Clone returns a deep copy of the project with every id preserved.
// Mutating the copy leaves the original untouched.
func (p *Project) Clone() *Project {
	files := make(map[string]*File, len(p.Files))
	for id, f := range p.Files {
		copied := *f
		files[id] = &copied
	}
	return &Project{
		ID:           p.ID,
		Name:         p.Name,
		Type:         p.Type,
		LastModified: p.LastModified,
		Files:        files,
		Thumbnail:    p.Thumbnail,
	}
}

// Package storage provides persistence for Siteforge projects.
package storage

import (
	"siteforge/internal/models"
)

// ProjectStore defines the persistence contract for projects. The tree
// managers never touch it directly; callers persist the resulting project
// snapshot after each mutation.
type ProjectStore interface {
	ProjectAdd(p *models.Project) error
	ProjectGet(id string) (*models.Project, error)
	ProjectGetAll() ([]*models.Project, error)
	ProjectUpdate(p *models.Project) error
	ProjectDelete(id string) error
	Close() error
}

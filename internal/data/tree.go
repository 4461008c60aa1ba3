// Package data provides project and file tree management for Siteforge.
// This file contains the shared tree traversal helpers.
package data

import (
	"sort"

	"siteforge/internal/models"
)

// maxTreeDepth bounds every recursive walk so a corrupted (cyclic) parent
// chain surfaces as ErrTreeCorrupted instead of unbounded recursion.
const maxTreeDepth = 128

// ChildrenOf returns the files directly under parentID, directories first,
// then lexicographic by name (case-sensitive). This ordering is a display
// and export contract: archive construction relies on it being deterministic.
func ChildrenOf(p *models.Project, parentID string) []*models.File {
	var children []*models.File
	for _, f := range p.Files {
		if f.ParentID == parentID {
			children = append(children, f)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		if children[i].IsDirectory != children[j].IsDirectory {
			return children[i].IsDirectory
		}
		return children[i].Name < children[j].Name
	})
	return children
}

// collectSubtree appends every descendant of node to out in post-order
// (children before their parent). The node itself is not included.
func collectSubtree(p *models.Project, node *models.File, out *[]*models.File, depth int) error {
	if depth > maxTreeDepth {
		return models.ErrTreeCorrupted
	}
	for _, child := range ChildrenOf(p, node.ID) {
		if err := collectSubtree(p, child, out, depth+1); err != nil {
			return err
		}
		*out = append(*out, child)
	}
	return nil
}

// isDescendant reports whether candidateID is id itself or lies anywhere
// beneath it, by walking candidateID's parent chain up to the root.
func isDescendant(p *models.Project, id, candidateID string) (bool, error) {
	current := candidateID
	for depth := 0; current != models.RootID; depth++ {
		if depth > maxTreeDepth {
			return false, models.ErrTreeCorrupted
		}
		if current == id {
			return true, nil
		}
		parent := p.FileByID(current)
		if parent == nil {
			return false, nil
		}
		current = parent.ParentID
	}
	return false, nil
}

package data

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"siteforge/internal/models"
)

// memStore is an in-memory ProjectStore for tests.
type memStore struct {
	projects map[string]*models.Project
}

func newMemStore() *memStore {
	return &memStore{projects: make(map[string]*models.Project)}
}

func (m *memStore) ProjectAdd(p *models.Project) error {
	if _, exists := m.projects[p.ID]; exists {
		return fmt.Errorf("duplicate project id %s", p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) ProjectGet(id string) (*models.Project, error) {
	p, exists := m.projects[id]
	if !exists {
		return nil, models.ErrProjectNotFound
	}
	return p, nil
}

func (m *memStore) ProjectGetAll() ([]*models.Project, error) {
	var all []*models.Project
	for _, p := range m.projects {
		all = append(all, p)
	}
	return all, nil
}

func (m *memStore) ProjectUpdate(p *models.Project) error {
	if _, exists := m.projects[p.ID]; !exists {
		return models.ErrProjectNotFound
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memStore) ProjectDelete(id string) error {
	if _, exists := m.projects[id]; !exists {
		return models.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memStore) Close() error { return nil }

func TestProjectLifecycle(t *testing.T) {
	pm, err := NewProjectManager(newMemStore())
	if err != nil {
		t.Fatalf("NewProjectManager failed: %v", err)
	}

	if _, err := pm.ProjectAdd("  ", models.ProjectHTML); !errors.Is(err, models.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	p, err := pm.ProjectAdd("My Site", models.ProjectHTML)
	if err != nil {
		t.Fatalf("ProjectAdd failed: %v", err)
	}

	if pm.Current() != nil {
		t.Error("no project should be selected initially")
	}
	if _, err := pm.ProjectSelect(p.ID); err != nil {
		t.Fatalf("ProjectSelect failed: %v", err)
	}
	if pm.Current() == nil || pm.Current().ID != p.ID {
		t.Error("selection did not stick")
	}

	if _, err := pm.ProjectSelect("missing"); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}

	if err := pm.ProjectDelete(p.ID); err != nil {
		t.Fatalf("ProjectDelete failed: %v", err)
	}
	if pm.Current() != nil {
		t.Error("deleting the selected project should reset the selection")
	}
	if err := pm.ProjectDelete(p.ID); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectListOrdered(t *testing.T) {
	pm, _ := NewProjectManager(newMemStore())
	pm.ProjectAdd("zeta", models.ProjectHTML)
	pm.ProjectAdd("alpha", models.ProjectPHP)
	pm.ProjectAdd("mid", models.ProjectHTML)

	list := pm.ProjectList()
	if len(list) != 3 {
		t.Fatalf("expected 3 projects, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name > list[i].Name {
			t.Errorf("projects out of order: %q after %q", list[i].Name, list[i-1].Name)
		}
	}
}

// pathOf renders a file's location as names joined from the root, used to
// compare tree shape independent of ids.
func pathOf(p *models.Project, f *models.File) string {
	parts := []string{f.Name}
	current := f.ParentID
	for current != models.RootID {
		parent := p.FileByID(current)
		if parent == nil {
			return "<dangling>/" + strings.Join(parts, "/")
		}
		parts = append([]string{parent.Name}, parts...)
		current = parent.ParentID
	}
	return strings.Join(parts, "/")
}

func allPaths(p *models.Project) []string {
	var paths []string
	for _, f := range p.Files {
		paths = append(paths, pathOf(p, f))
	}
	sort.Strings(paths)
	return paths
}

func TestProjectDuplicate(t *testing.T) {
	pm, _ := NewProjectManager(newMemStore())
	fm := NewFileManager()

	src, _ := pm.ProjectAdd("Portfolio", models.ProjectHTML)
	assets, _ := fm.FileAdd(src, models.RootID, "assets", "", true)
	fm.FileAdd(src, assets.ID, "logo.png", "data:image/png;base64,AA==", false)
	fm.FileAdd(src, models.RootID, "index.html", "<html></html>", false)

	dup, err := pm.ProjectDuplicate(src.ID)
	if err != nil {
		t.Fatalf("ProjectDuplicate failed: %v", err)
	}

	if dup.ID == src.ID {
		t.Error("duplicate shares the project id")
	}
	if len(dup.Files) != len(src.Files) {
		t.Fatalf("expected %d files, got %d", len(src.Files), len(dup.Files))
	}

	// Id sets must be disjoint.
	for id := range dup.Files {
		if _, clash := src.Files[id]; clash {
			t.Errorf("file id %s shared between original and copy", id)
		}
	}

	// Relative structure must be preserved.
	srcPaths := allPaths(src)
	dupPaths := allPaths(dup)
	if len(srcPaths) != len(dupPaths) {
		t.Fatal("path sets differ in size")
	}
	for i := range srcPaths {
		if srcPaths[i] != dupPaths[i] {
			t.Errorf("structure diverged: %q vs %q", srcPaths[i], dupPaths[i])
		}
	}

	// Content comes along.
	for _, f := range dup.Files {
		if f.Name == "index.html" && f.Content != "<html></html>" {
			t.Errorf("content not copied: %q", f.Content)
		}
	}
}

func TestProjectRename(t *testing.T) {
	pm, _ := NewProjectManager(newMemStore())
	p, _ := pm.ProjectAdd("Old", models.ProjectHTML)
	before := p.LastModified

	if err := pm.ProjectRename(p.ID, "New"); err != nil {
		t.Fatalf("ProjectRename failed: %v", err)
	}
	renamed, err := pm.ProjectGet(p.ID)
	if err != nil {
		t.Fatalf("ProjectGet failed: %v", err)
	}
	if renamed.Name != "New" {
		t.Errorf("expected name New, got %q", renamed.Name)
	}
	if renamed.LastModified < before {
		t.Error("LastModified went backwards")
	}

	if err := pm.ProjectRename(p.ID, ""); !errors.Is(err, models.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
}

func TestProjectMutateAtomic(t *testing.T) {
	store := newMemStore()
	pm, _ := NewProjectManager(store)
	fm := NewFileManager()

	p, _ := pm.ProjectAdd("Site", models.ProjectHTML)
	fm.FileAdd(p, models.RootID, "index.html", "", false)
	if err := pm.ProjectSave(p); err != nil {
		t.Fatalf("ProjectSave failed: %v", err)
	}

	// The add succeeds inside the mutation, the rename then collides. The
	// whole mutation must be discarded.
	err := pm.ProjectMutate(p.ID, func(snap *models.Project) error {
		added, err := fm.FileAdd(snap, models.RootID, "style.css", "", false)
		if err != nil {
			return err
		}
		return fm.FileRename(snap, added.ID, "index.html")
	})
	if !errors.Is(err, models.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	live, _ := pm.ProjectGet(p.ID)
	if len(live.Files) != 1 {
		t.Errorf("failed mutation left changes in memory: %d files", len(live.Files))
	}
	stored, _ := store.ProjectGet(p.ID)
	if len(stored.Files) != 1 {
		t.Errorf("failed mutation left changes in the store: %d files", len(stored.Files))
	}

	// A successful mutation lands in both.
	err = pm.ProjectMutate(p.ID, func(snap *models.Project) error {
		_, err := fm.FileAdd(snap, models.RootID, "style.css", "", false)
		return err
	})
	if err != nil {
		t.Fatalf("ProjectMutate failed: %v", err)
	}
	live, _ = pm.ProjectGet(p.ID)
	stored, _ = store.ProjectGet(p.ID)
	if len(live.Files) != 2 || len(stored.Files) != 2 {
		t.Errorf("mutation not applied: %d in memory, %d stored", len(live.Files), len(stored.Files))
	}

	if err := pm.ProjectMutate("missing", func(*models.Project) error { return nil }); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectSnapshotIsolated(t *testing.T) {
	pm, _ := NewProjectManager(newMemStore())
	fm := NewFileManager()

	p, _ := pm.ProjectAdd("Site", models.ProjectHTML)
	f, _ := fm.FileAdd(p, models.RootID, "index.html", "v1", false)

	snap, err := pm.ProjectSnapshot(p.ID)
	if err != nil {
		t.Fatalf("ProjectSnapshot failed: %v", err)
	}

	// Later edits to the live project must not show in the snapshot.
	fm.FileUpdateContent(p, f.ID, "v2")
	fm.FileAdd(p, models.RootID, "style.css", "", false)

	if got := snap.FileByID(f.ID).Content; got != "v1" {
		t.Errorf("snapshot saw a later edit: %q", got)
	}
	if len(snap.Files) != 1 {
		t.Errorf("snapshot saw a later add: %d files", len(snap.Files))
	}

	// And edits to the snapshot must not reach the live project.
	fm.FileUpdateContent(snap, f.ID, "v3")
	if got := p.FileByID(f.ID).Content; got != "v2" {
		t.Errorf("snapshot edit leaked into the live project: %q", got)
	}

	if _, err := pm.ProjectSnapshot("missing"); !errors.Is(err, models.ErrProjectNotFound) {
		t.Errorf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestProjectSave(t *testing.T) {
	store := newMemStore()
	pm, _ := NewProjectManager(store)
	fm := NewFileManager()

	p, _ := pm.ProjectAdd("Site", models.ProjectHTML)
	fm.FileAdd(p, models.RootID, "index.html", "hi", false)

	if err := pm.ProjectSave(p); err != nil {
		t.Fatalf("ProjectSave failed: %v", err)
	}
	if err := pm.ProjectSave(nil); !errors.Is(err, models.ErrNoProject) {
		t.Errorf("expected ErrNoProject, got %v", err)
	}

	stored, err := store.ProjectGet(p.ID)
	if err != nil {
		t.Fatalf("store lookup failed: %v", err)
	}
	if len(stored.Files) != 1 {
		t.Errorf("expected 1 persisted file, got %d", len(stored.Files))
	}
}

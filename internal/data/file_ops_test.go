package data

import (
	"errors"
	"testing"

	"siteforge/internal/models"
)

func newTestProject() *models.Project {
	return models.NewProject("My Site", models.ProjectHTML)
}

// checkInvariants walks every file's parent chain and fails the test if a
// parent is missing, is not a directory, or the chain does not terminate at
// the root sentinel.
func checkInvariants(t *testing.T, p *models.Project) {
	t.Helper()
	for _, f := range p.Files {
		current := f.ParentID
		for depth := 0; current != models.RootID; depth++ {
			if depth > maxTreeDepth {
				t.Fatalf("parent chain of %q does not terminate", f.Name)
			}
			parent := p.FileByID(current)
			if parent == nil {
				t.Fatalf("file %q has dangling parent id %s", f.Name, current)
			}
			if !parent.IsDirectory {
				t.Fatalf("file %q is parented to non-directory %q", f.Name, parent.Name)
			}
			current = parent.ParentID
		}
	}
}

func TestFileAdd(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	index, err := fm.FileAdd(p, models.RootID, "index.html", "<html></html>", false)
	if err != nil {
		t.Fatalf("FileAdd failed: %v", err)
	}
	if index.ID == "" || index.ID == models.RootID {
		t.Errorf("expected a fresh id, got %q", index.ID)
	}
	if index.Kind != models.KindHTML {
		t.Errorf("expected html kind, got %s", index.Kind)
	}

	assets, err := fm.FileAdd(p, models.RootID, "assets", "ignored", true)
	if err != nil {
		t.Fatalf("FileAdd directory failed: %v", err)
	}
	if assets.Content != "" {
		t.Error("directory content should be empty")
	}

	logo, err := fm.FileAdd(p, assets.ID, "logo.png", "data:image/png;base64,AAAA", false)
	if err != nil {
		t.Fatalf("FileAdd nested failed: %v", err)
	}
	if logo.ParentID != assets.ID {
		t.Errorf("expected parent %s, got %s", assets.ID, logo.ParentID)
	}
	if logo.Kind != models.KindImage {
		t.Errorf("expected image kind, got %s", logo.Kind)
	}

	checkInvariants(t, p)
}

func TestFileAddInvalidParent(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	if _, err := fm.FileAdd(p, "missing", "a.html", "", false); !errors.Is(err, models.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent, got %v", err)
	}

	leaf, _ := fm.FileAdd(p, models.RootID, "a.html", "", false)
	if _, err := fm.FileAdd(p, leaf.ID, "b.html", "", false); !errors.Is(err, models.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent for leaf parent, got %v", err)
	}
}

func TestFileAddNameValidation(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	if _, err := fm.FileAdd(p, models.RootID, "   ", "", false); !errors.Is(err, models.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}

	if _, err := fm.FileAdd(p, models.RootID, "index.html", "", false); err != nil {
		t.Fatalf("FileAdd failed: %v", err)
	}
	if _, err := fm.FileAdd(p, models.RootID, "index.html", "", false); !errors.Is(err, models.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	// The same name under a different parent is allowed.
	dir, _ := fm.FileAdd(p, models.RootID, "sub", "", true)
	if _, err := fm.FileAdd(p, dir.ID, "index.html", "", false); err != nil {
		t.Errorf("same name under different parent should succeed, got %v", err)
	}
}

func TestFileDeleteCascade(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	index, _ := fm.FileAdd(p, models.RootID, "index.html", "", false)
	assets, _ := fm.FileAdd(p, models.RootID, "assets", "", true)
	fonts, _ := fm.FileAdd(p, assets.ID, "fonts", "", true)
	fm.FileAdd(p, assets.ID, "logo.png", "", false)
	fm.FileAdd(p, fonts.ID, "body.woff", "", false)

	if err := fm.FileDelete(p, assets.ID); err != nil {
		t.Fatalf("FileDelete failed: %v", err)
	}

	if len(p.Files) != 1 {
		t.Fatalf("expected exactly 1 surviving file, got %d", len(p.Files))
	}
	if p.FileByID(index.ID) == nil {
		t.Error("unrelated file was removed by cascade")
	}
	checkInvariants(t, p)
}

func TestFileDeleteNotFound(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	if err := fm.FileDelete(p, "nope"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFileListOrdering(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	fm.FileAdd(p, models.RootID, "b.css", "", false)
	fm.FileAdd(p, models.RootID, "a.css", "", false)
	fm.FileAdd(p, models.RootID, "zfolder", "", true)
	fm.FileAdd(p, models.RootID, "afolder", "", true)
	fm.FileAdd(p, models.RootID, "Main.js", "", false)

	want := []string{"afolder", "zfolder", "Main.js", "a.css", "b.css"}

	// The ordering is a contract; it must be stable across calls.
	for run := 0; run < 3; run++ {
		files, err := fm.FileList(p, models.RootID)
		if err != nil {
			t.Fatalf("FileList failed: %v", err)
		}
		if len(files) != len(want) {
			t.Fatalf("expected %d files, got %d", len(want), len(files))
		}
		for i, f := range files {
			if f.Name != want[i] {
				t.Errorf("run %d position %d: expected %q, got %q", run, i, want[i], f.Name)
			}
		}
	}
}

func TestFileMove(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	dir, _ := fm.FileAdd(p, models.RootID, "src", "", true)
	sub, _ := fm.FileAdd(p, dir.ID, "deep", "", true)
	file, _ := fm.FileAdd(p, models.RootID, "app.js", "", false)

	if err := fm.FileMove(p, file.ID, sub.ID); err != nil {
		t.Fatalf("FileMove failed: %v", err)
	}
	if file.ParentID != sub.ID {
		t.Errorf("expected parent %s, got %s", sub.ID, file.ParentID)
	}

	if err := fm.FileMove(p, dir.ID, dir.ID); !errors.Is(err, models.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected for self move, got %v", err)
	}
	if err := fm.FileMove(p, dir.ID, sub.ID); !errors.Is(err, models.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected for descendant move, got %v", err)
	}
	if err := fm.FileMove(p, file.ID, "missing"); !errors.Is(err, models.ErrInvalidParent) {
		t.Errorf("expected ErrInvalidParent, got %v", err)
	}

	if err := fm.FileMove(p, sub.ID, models.RootID); err != nil {
		t.Fatalf("move to root failed: %v", err)
	}
	checkInvariants(t, p)
}

func TestFileRename(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	dir, _ := fm.FileAdd(p, models.RootID, "src", "", true)
	child, _ := fm.FileAdd(p, dir.ID, "app.js", "", false)
	fm.FileAdd(p, models.RootID, "taken.css", "", false)

	if err := fm.FileRename(p, "missing", "x"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := fm.FileRename(p, dir.ID, "  "); !errors.Is(err, models.ErrInvalidName) {
		t.Errorf("expected ErrInvalidName, got %v", err)
	}
	if err := fm.FileRename(p, dir.ID, "taken.css"); !errors.Is(err, models.ErrDuplicateName) {
		t.Errorf("expected ErrDuplicateName, got %v", err)
	}

	if err := fm.FileRename(p, dir.ID, "lib"); err != nil {
		t.Fatalf("FileRename failed: %v", err)
	}
	// Links are by id, so the child is unaffected.
	if child.ParentID != dir.ID {
		t.Error("rename changed a child's parent id")
	}
	checkInvariants(t, p)
}

func TestFileUpdateContent(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	dir, _ := fm.FileAdd(p, models.RootID, "assets", "", true)
	file, _ := fm.FileAdd(p, models.RootID, "style.css", "", false)

	if err := fm.FileUpdateContent(p, "missing", "x"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := fm.FileUpdateContent(p, dir.ID, "x"); !errors.Is(err, models.ErrIsDirectory) {
		t.Errorf("expected ErrIsDirectory, got %v", err)
	}

	before := p.LastModified
	if err := fm.FileUpdateContent(p, file.ID, "body{}"); err != nil {
		t.Fatalf("FileUpdateContent failed: %v", err)
	}
	if file.Content != "body{}" {
		t.Errorf("content not updated: %q", file.Content)
	}
	if p.LastModified < before {
		t.Error("LastModified went backwards")
	}
}

func TestCorruptedParentChainDetected(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	a, _ := fm.FileAdd(p, models.RootID, "a", "", true)
	b, _ := fm.FileAdd(p, a.ID, "b", "", true)
	f, _ := fm.FileAdd(p, models.RootID, "app.js", "", false)

	// Corrupt the tree behind the manager's back: a and b now point at
	// each other. Every walk must fail instead of recursing forever.
	a.ParentID = b.ID

	if err := fm.FileDelete(p, a.ID); !errors.Is(err, models.ErrTreeCorrupted) {
		t.Errorf("expected ErrTreeCorrupted from cascade delete, got %v", err)
	}
	if err := fm.FileMove(p, f.ID, a.ID); !errors.Is(err, models.ErrTreeCorrupted) {
		t.Errorf("expected ErrTreeCorrupted from move, got %v", err)
	}

	// The unrelated file is still intact.
	if p.FileByID(f.ID) == nil {
		t.Error("corruption check removed an unrelated file")
	}
}

func TestNilProject(t *testing.T) {
	fm := NewFileManager()

	if _, err := fm.FileAdd(nil, models.RootID, "a", "", false); !errors.Is(err, models.ErrNoProject) {
		t.Errorf("expected ErrNoProject, got %v", err)
	}
	if err := fm.FileDelete(nil, "x"); !errors.Is(err, models.ErrNoProject) {
		t.Errorf("expected ErrNoProject, got %v", err)
	}
	if _, err := fm.FileList(nil, models.RootID); !errors.Is(err, models.ErrNoProject) {
		t.Errorf("expected ErrNoProject, got %v", err)
	}
}

func TestInvariantsAfterMixedOperations(t *testing.T) {
	fm := NewFileManager()
	p := newTestProject()

	a, _ := fm.FileAdd(p, models.RootID, "a", "", true)
	b, _ := fm.FileAdd(p, a.ID, "b", "", true)
	c, _ := fm.FileAdd(p, b.ID, "c", "", true)
	fm.FileAdd(p, c.ID, "deep.js", "", false)
	fm.FileAdd(p, models.RootID, "index.html", "", false)

	if err := fm.FileMove(p, c.ID, models.RootID); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if err := fm.FileRename(p, b.ID, "renamed"); err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if err := fm.FileDelete(p, a.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	// c was moved out before a's subtree was deleted, so it must survive.
	if p.FileByID(c.ID) == nil {
		t.Error("moved-out subtree was deleted with its former ancestor")
	}
	checkInvariants(t, p)
}

package archive

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"siteforge/internal/data"
	"siteforge/internal/models"
)

const (
	// compressionLevel balances archive size against packing time. It is a
	// tunable, not a correctness property.
	compressionLevel = 6

	dataURIPrefix = "data:"

	maxTreeDepth = 128
)

// Exporter turns a project tree into a zip archive whose single top-level
// entry is a directory named after the sanitized project name.
type Exporter struct {
	// StrictDataURI fails the export on a malformed data URI instead of
	// silently skipping the entry.
	StrictDataURI bool

	inFlight atomic.Bool
}

func NewExporter() *Exporter {
	return &Exporter{}
}

// Result carries the outcome of an asynchronous export.
type Result struct {
	Data []byte
	Err  error
}

// Export serializes the project into a zip archive and returns its bytes.
// The traversal is depth-first over the deterministic child ordering, so
// the same tree always produces the same archive layout. On any failure no
// partial archive is returned.
func (e *Exporter) Export(p *models.Project) ([]byte, error) {
	if p == nil {
		return nil, models.ErrNoProject
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	rootName := SanitizeName(p.Name)
	if _, err := zw.Create(rootName + "/"); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRootFolderCreation, err)
	}

	if err := e.writeChildren(zw, p, models.RootID, rootName, 0); err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportAsync runs Export in the background and delivers the outcome on the
// returned channel. Only one export may be in flight per Exporter; the
// operation is not cancellable and exposes no partial results.
func (e *Exporter) ExportAsync(p *models.Project) (<-chan Result, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return nil, models.ErrExportInProgress
	}

	out := make(chan Result, 1)
	go func() {
		defer e.inFlight.Store(false)
		blob, err := e.Export(p)
		out <- Result{Data: blob, Err: err}
		close(out)
	}()

	return out, nil
}

// Exporting reports whether an asynchronous export is currently running.
func (e *Exporter) Exporting() bool {
	return e.inFlight.Load()
}

// ExportSingle builds an archive containing only the given file under the
// sanitized project root. The single-file merger shares the archive
// mechanics of the full export through this path.
func (e *Exporter) ExportSingle(p *models.Project, fileName, content string) ([]byte, error) {
	if p == nil {
		return nil, models.ErrNoProject
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, compressionLevel)
	})

	rootName := SanitizeName(p.Name)
	if _, err := zw.Create(rootName + "/"); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrRootFolderCreation, err)
	}

	w, err := zw.Create(rootName + "/" + fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive entry %s: %w", fileName, err)
	}
	if _, err := w.Write([]byte(content)); err != nil {
		return nil, fmt.Errorf("failed to write archive entry %s: %w", fileName, err)
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}

func (e *Exporter) writeChildren(zw *zip.Writer, p *models.Project, parentID, prefix string, depth int) error {
	if depth > maxTreeDepth {
		return models.ErrTreeCorrupted
	}

	for _, f := range data.ChildrenOf(p, parentID) {
		entryPath := prefix + "/" + f.Name

		if f.IsDirectory {
			if _, err := zw.Create(entryPath + "/"); err != nil {
				return fmt.Errorf("failed to create archive folder %s: %w", entryPath, err)
			}
			if err := e.writeChildren(zw, p, f.ID, entryPath, depth+1); err != nil {
				return err
			}
			continue
		}

		payload, ok, err := e.filePayload(f)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		w, err := zw.Create(entryPath)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %s: %w", entryPath, err)
		}
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("failed to write archive entry %s: %w", entryPath, err)
		}
	}

	return nil
}

// filePayload resolves a leaf's archive bytes. Image and font content that
// carries a data URI is split on its first comma and base64-decoded; all
// other content is written verbatim as UTF-8 text. A malformed data URI is
// skipped (ok == false) unless StrictDataURI is set.
func (e *Exporter) filePayload(f *models.File) ([]byte, bool, error) {
	if !f.Kind.Binary() || !strings.HasPrefix(f.Content, dataURIPrefix) {
		return []byte(f.Content), true, nil
	}

	comma := strings.Index(f.Content, ",")
	if comma < 0 {
		if e.StrictDataURI {
			return nil, false, fmt.Errorf("%w: %s has no payload separator", models.ErrMalformedDataURI, f.Name)
		}
		return nil, false, nil
	}

	decoded, err := base64.StdEncoding.DecodeString(f.Content[comma+1:])
	if err != nil {
		if e.StrictDataURI {
			return nil, false, fmt.Errorf("%w: %s: %v", models.ErrMalformedDataURI, f.Name, err)
		}
		return nil, false, nil
	}

	return decoded, true, nil
}

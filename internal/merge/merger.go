// Package merge implements the single-file export mode: a conventional
// three-file web project is collapsed into one self-contained HTML document.
package merge

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"siteforge/internal/archive"
	"siteforge/internal/models"
)

const entryPointName = "index.html"

// linkTagPattern matches <link> tags whose href ends with style.css,
// optionally preceded by a path segment. This is best-effort textual
// surgery, not HTML-aware parsing; unusual markup can slip through.
var linkTagPattern = regexp.MustCompile(`(?i)<link\b[^>]*\bhref\s*=\s*["'](?:[^"']*/)?style\.css["'][^>]*/?>`)

// Document collapses the project into one HTML document. The project must
// contain a file named index.html at any location; style.css and
// script.js (falling back to main.js) are inlined when present, and the
// external references they replace are stripped.
func Document(p *models.Project) (string, error) {
	if p == nil {
		return "", models.ErrNoProject
	}

	entry := findByName(p, entryPointName)
	if entry == nil {
		return "", models.ErrMissingEntryPoint
	}
	doc := entry.Content

	if css := findByName(p, "style.css"); css != nil {
		block := "<style>\n" + css.Content + "\n</style>"
		doc = injectStyle(doc, block)
		doc = linkTagPattern.ReplaceAllString(doc, "")
	}

	script := findByName(p, "script.js")
	if script == nil {
		script = findByName(p, "main.js")
	}
	if script != nil {
		block := "<script>\n" + script.Content + "\n</script>"
		doc = injectScript(doc, block)
		doc = scriptTagPattern(script.Name).ReplaceAllString(doc, "")
	}

	return doc, nil
}

// Export produces the single-file archive: only the merged index.html under
// the sanitized project root, regardless of what else the tree holds.
func Export(e *archive.Exporter, p *models.Project) ([]byte, error) {
	doc, err := Document(p)
	if err != nil {
		return nil, err
	}
	return e.ExportSingle(p, entryPointName, doc)
}

// injectStyle places the style block before the first </head>; if there is
// none, before the first <body; if neither exists, it is prepended. The
// fallback ordering is a compatibility contract.
func injectStyle(doc, block string) string {
	if out, ok := injectBefore(doc, "</head>", block); ok {
		return out
	}
	if out, ok := injectBefore(doc, "<body", block); ok {
		return out
	}
	return block + "\n" + doc
}

// injectScript places the script block before the first </body>, or appends
// it when no such tag exists.
func injectScript(doc, block string) string {
	if out, ok := injectBefore(doc, "</body>", block); ok {
		return out
	}
	return doc + "\n" + block
}

func injectBefore(doc, marker, block string) (string, bool) {
	idx := strings.Index(doc, marker)
	if idx < 0 {
		return doc, false
	}
	return doc[:idx] + block + "\n" + doc[idx:], true
}

// scriptTagPattern matches <script> elements whose src names the given
// file, path-qualified or bare.
func scriptTagPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`(?is)<script\b[^>]*\bsrc\s*=\s*["'](?:[^"']*/)?%s["'][^>]*>\s*</script>`,
		regexp.QuoteMeta(name),
	))
}

// findByName returns the first non-directory file with the exact name,
// anywhere in the tree. Candidates are ordered by id so lookup is
// deterministic when siblings in different folders share a name.
func findByName(p *models.Project, name string) *models.File {
	var matches []*models.File
	for _, f := range p.Files {
		if !f.IsDirectory && f.Name == name {
			matches = append(matches, f)
		}
	}
	if len(matches) == 0 {
		return nil
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
	return matches[0]
}

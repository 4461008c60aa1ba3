// Package archive serializes a project's file tree into a downloadable
// zip archive.
package archive

import (
	"regexp"
	"strings"
)

// DefaultProjectLabel names the archive root when sanitization empties the
// project name.
const DefaultProjectLabel = "project"

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9-_\s]`)

// SanitizeName strips every character outside [A-Za-z0-9-_\s] from a
// project name and trims the result. An empty result falls back to
// DefaultProjectLabel. Sanitizing an already-sanitized name is a no-op.
func SanitizeName(name string) string {
	clean := strings.TrimSpace(unsafeNameChars.ReplaceAllString(name, ""))
	if clean == "" {
		return DefaultProjectLabel
	}
	return clean
}

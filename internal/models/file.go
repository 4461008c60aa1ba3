package models

import (
	"strings"

	"github.com/google/uuid"
)

// RootID is the sentinel parent id denoting the top level of a project.
// It is never the id of an actual file.
const RootID = "root"

// FileKind determines how a file's content is treated on export:
// image and font content is a base64 data URI, everything else is UTF-8 text.
type FileKind string

const (
	KindHTML       FileKind = "html"
	KindCSS        FileKind = "css"
	KindJavaScript FileKind = "javascript"
	KindJSON       FileKind = "json"
	KindXML        FileKind = "xml"
	KindPHP        FileKind = "php"
	KindImage      FileKind = "image"
	KindFont       FileKind = "font"
)

// File is a single node in a project's tree, linked to its parent by id.
type File struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Kind        FileKind `json:"kind"`
	ParentID    string   `json:"parentId"`
	IsDirectory bool     `json:"isDirectory"`
	IsOpen      bool     `json:"isOpen"`
}

func NewFile(name, content string, kind FileKind, parentID string, isDirectory bool) *File {
	if isDirectory {
		content = ""
	}
	return &File{
		ID:          uuid.NewString(),
		Name:        name,
		Content:     content,
		Kind:        kind,
		ParentID:    parentID,
		IsDirectory: isDirectory,
	}
}

// Binary reports whether the file's content is expected to be a data URI.
func (k FileKind) Binary() bool {
	return k == KindImage || k == KindFont
}

// KindForName derives a file kind from a file name's extension.
// Unknown extensions fall back to html so the file is exported as text.
func KindForName(name string) FileKind {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return KindHTML
	}
	switch strings.ToLower(name[idx+1:]) {
	case "css":
		return KindCSS
	case "js", "mjs":
		return KindJavaScript
	case "json":
		return KindJSON
	case "xml", "svg":
		return KindXML
	case "php":
		return KindPHP
	case "png", "jpg", "jpeg", "gif", "webp", "ico":
		return KindImage
	case "woff", "woff2", "ttf", "otf", "eot":
		return KindFont
	default:
		return KindHTML
	}
}

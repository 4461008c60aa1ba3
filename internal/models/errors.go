package models

import "errors"

// Structural errors from tree mutations. All are reported before any state
// change; none are silently corrected.
var (
	ErrInvalidParent = errors.New("parent is not an existing directory")
	ErrNotFound      = errors.New("file not found")
	ErrInvalidName   = errors.New("name must not be empty")
	ErrDuplicateName = errors.New("a sibling with that name already exists")
	ErrCycleDetected = errors.New("cannot move a directory into itself or a descendant")
	ErrIsDirectory   = errors.New("directories have no content")
	ErrTreeCorrupted = errors.New("parent chain exceeds maximum tree depth")
)

// Export errors.
var (
	ErrNoProject          = errors.New("no project loaded")
	ErrMissingEntryPoint  = errors.New("project has no index.html")
	ErrRootFolderCreation = errors.New("failed to create archive root folder")
	ErrMalformedDataURI   = errors.New("malformed data URI")
	ErrExportInProgress   = errors.New("an export is already in progress")
)

// Store errors.
var (
	ErrProjectNotFound = errors.New("project not found")
)

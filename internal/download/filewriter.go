package download

import "io"

// FileWriter abstracts filesystem operations for downloads.
type FileWriter interface {
	// Create creates or truncates a file for streaming writes.
	Create(path string) (io.WriteCloser, error)

	// MkdirAll creates a directory path and all necessary parents.
	MkdirAll(path string) error

	// Remove deletes a file.
	Remove(path string) error

	// Exists reports whether the given path exists.
	Exists(path string) bool
}

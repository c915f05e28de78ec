package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
// This provides compatibility with the fs.FS ecosystem while maintaining
// a stable local type for our abstraction layer.
type FileInfo = fs.FileInfo

// FileSystemProvider gives read access to directories and files.
type FileSystemProvider interface {
	// ReadFile reads a specific file at the given path
	ReadFile(path string) ([]byte, error)

	// ReadDir reads the entries of the directory at the given path,
	// sorted by name. It does not descend into sub-directories.
	ReadDir(path string) ([]FileInfo, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}

package filesystem

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return f.mode }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return f.isDir }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

type memoryEntry struct {
	content []byte
	readErr error
	info    *memoryFileInfo
}

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// Paths use forward slashes; relative paths are resolved against the root.
type MemoryFileSystem struct {
	entries map[string]*memoryEntry
	root    string
}

// NewMemoryFileSystem creates a new in-memory filesystem with an empty root directory.
func NewMemoryFileSystem(root string) *MemoryFileSystem {
	root = path.Clean(filepath.ToSlash(root))

	mfs := &MemoryFileSystem{
		entries: make(map[string]*memoryEntry),
		root:    root,
	}
	mfs.entries[root] = newDirEntry(root, time.Now())
	return mfs
}

func newDirEntry(p string, modTime time.Time) *memoryEntry {
	return &memoryEntry{
		info: &memoryFileInfo{
			name:    path.Base(p),
			mode:    0755 | fs.ModeDir,
			modTime: modTime,
			isDir:   true,
		},
	}
}

// Root returns the root directory of the filesystem.
func (mfs *MemoryFileSystem) Root() string {
	return mfs.root
}

// AddFile adds a file to the in-memory filesystem
func (mfs *MemoryFileSystem) AddFile(filePath string, content string) {
	mfs.AddFileWithTime(filePath, content, time.Now())
}

// AddFileWithTime adds a file with a specific modification time
func (mfs *MemoryFileSystem) AddFileWithTime(filePath string, content string, modTime time.Time) {
	absPath := mfs.resolve(filePath)
	contentBytes := []byte(content)

	mfs.entries[absPath] = &memoryEntry{
		content: contentBytes,
		info: &memoryFileInfo{
			name:    path.Base(absPath),
			size:    int64(len(contentBytes)),
			mode:    0644,
			modTime: modTime,
		},
	}
	mfs.ensureDirectoriesExist(absPath)
}

// AddDir adds an empty directory.
func (mfs *MemoryFileSystem) AddDir(dirPath string) {
	absPath := mfs.resolve(dirPath)
	mfs.entries[absPath] = newDirEntry(absPath, time.Now())
	mfs.ensureDirectoriesExist(absPath)
}

// FailRead makes subsequent reads of an existing file return err.
func (mfs *MemoryFileSystem) FailRead(filePath string, err error) {
	if entry, ok := mfs.entries[mfs.resolve(filePath)]; ok {
		entry.readErr = err
	}
}

func (mfs *MemoryFileSystem) resolve(p string) string {
	p = filepath.ToSlash(p)
	if p == "" || p == "." {
		return mfs.root
	}
	if !path.IsAbs(p) {
		p = path.Join(mfs.root, p)
	}
	return path.Clean(p)
}

// ensureDirectoriesExist creates directory entries for all parent directories
func (mfs *MemoryFileSystem) ensureDirectoriesExist(p string) {
	dir := path.Dir(p)
	if dir == p {
		return
	}
	if _, exists := mfs.entries[dir]; exists {
		return
	}
	mfs.entries[dir] = newDirEntry(dir, time.Now())
	mfs.ensureDirectoriesExist(dir)
}

// ReadFile implements FileSystemProvider.ReadFile
func (mfs *MemoryFileSystem) ReadFile(filePath string) ([]byte, error) {
	entry, exists := mfs.entries[mfs.resolve(filePath)]
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: filePath, Err: fs.ErrNotExist}
	}
	if entry.info.isDir {
		return nil, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}
	if entry.readErr != nil {
		return nil, &fs.PathError{Op: "read", Path: filePath, Err: entry.readErr}
	}
	return entry.content, nil
}

// ReadDir implements FileSystemProvider.ReadDir
func (mfs *MemoryFileSystem) ReadDir(dirPath string) ([]FileInfo, error) {
	absPath := mfs.resolve(dirPath)

	entry, exists := mfs.entries[absPath]
	if !exists {
		return nil, fmt.Errorf("failed to read directory: %w",
			&fs.PathError{Op: "open", Path: dirPath, Err: fs.ErrNotExist})
	}
	if !entry.info.isDir {
		return nil, fmt.Errorf("failed to read directory: not a directory: %s", dirPath)
	}
	if entry.readErr != nil {
		return nil, fmt.Errorf("failed to read directory: %w",
			&fs.PathError{Op: "open", Path: dirPath, Err: entry.readErr})
	}

	var infos []FileInfo
	for p, child := range mfs.entries {
		if p != absPath && path.Dir(p) == absPath {
			infos = append(infos, child.info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return strings.Compare(infos[i].Name(), infos[j].Name()) < 0
	})
	return infos, nil
}

// Stat implements FileSystemProvider.Stat
func (mfs *MemoryFileSystem) Stat(statPath string) (FileInfo, error) {
	entry, exists := mfs.entries[mfs.resolve(statPath)]
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: statPath, Err: fs.ErrNotExist}
	}
	return entry.info, nil
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)

package output

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"

	"github.com/vvka-141/datmerge/pkg/datmerge"
)

const (
	defaultFilePerm = 0o644
	defaultDirPerm  = 0o755
	tempPattern     = ".tmp-*"
)

var errIsDirectory = errors.New("destination is a directory")

// AtomicWriter writes whole files via temp file and rename.
type AtomicWriter struct {
	permFile os.FileMode
	permDir  os.FileMode
}

// NewAtomicWriter returns a writer creating files with mode 0644 and
// missing parent directories with mode 0755.
func NewAtomicWriter() *AtomicWriter {
	return &AtomicWriter{permFile: defaultFilePerm, permDir: defaultDirPerm}
}

// WriteFile replaces path with data. Any failure is returned as a
// *datmerge.WriteError and leaves no temporary file behind.
func (w *AtomicWriter) WriteFile(path string, data []byte) error {
	if err := w.writeAtomic(path, data); err != nil {
		return &datmerge.WriteError{Path: path, Err: err}
	}
	return nil
}

func (w *AtomicWriter) writeAtomic(dest string, data []byte) error {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return errIsDirectory
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, w.permDir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	_ = os.Chmod(tmpPath, w.permFile)

	bw := bufio.NewWriter(tmp)
	if _, err := bw.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := osReplace(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// best effort: persist the rename
	_ = syncDir(dir)
	return nil
}

// Verify AtomicWriter implements the interface at compile time
var _ datmerge.FileWriter = (*AtomicWriter)(nil)

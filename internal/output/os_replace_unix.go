//go:build !windows

package output

import "os"

// osReplace performs an atomic rename on POSIX systems.
func osReplace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir fsyncs the parent directory to persist the rename.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}

//go:build windows

package output

import "os"

// osReplace renames over an existing destination; on Windows os.Rename
// uses MoveFileEx with MOVEFILE_REPLACE_EXISTING.
func osReplace(tmpPath, dest string) error {
	return os.Rename(tmpPath, dest)
}

// syncDir is a no-op on Windows; directory fsync is not generally available.
func syncDir(dir string) error { return nil }

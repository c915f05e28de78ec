// Package scanner discovers the .dat files of an input directory.
//
// Discovery is non-recursive: only regular files directly inside the
// directory are considered, sub-directories are ignored even when their
// name ends in .dat. Files are returned sorted by name with their content
// and checksums, so a run reads every file exactly once.
//
// The scanner works against filesystem.FileSystemProvider, enabling both
// production use with the OS filesystem and testing with in-memory
// filesystems.
package scanner

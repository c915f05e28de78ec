// Package filesystem provides filesystem abstraction interfaces and implementations.
//
// The input side of the merge only lists one directory and reads whole
// files, so the abstraction is limited to those operations. This keeps the
// scanner testable through an in-memory implementation while production
// code uses the OS filesystem.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem

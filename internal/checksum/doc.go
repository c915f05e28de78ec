// Package checksum provides file content hashing with normalization support.
//
// Two checksums are computed for every input file:
//
//   - Raw checksum: Hash of the exact file content (detects all changes)
//   - Normalized checksum: Hash after normalizing line endings and blank
//     lines (identifies files carrying the same records regardless of the
//     platform that produced them)
//
// # Normalization Strategy
//
//  1. Convert CRLF and lone CR line endings to LF
//  2. Strip trailing spaces and tabs from every line
//  3. Drop blank lines
//
// Two .dat exports of the same data, one written on Windows and one on
// Linux, therefore share a normalized checksum.
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum

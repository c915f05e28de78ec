// Package logging provides concrete implementations of the datmerge.Logger interface.
//
//   - ConsoleLogger: prefixed lines on stderr, Verbose gated by a flag
//   - NullLogger: discards everything, for tests
//
// Both are safe for concurrent use by multiple goroutines.
package logging

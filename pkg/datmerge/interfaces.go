package datmerge

import (
	"context"
	"time"
)

// Merger runs the whole merge pipeline for one configuration.
type Merger interface {
	Merge(ctx context.Context, config MergeConfig) (Summary, error)
}

// FileScanner discovers and reads the .dat files of an input directory.
type FileScanner interface {
	// ScanDirectory lists the directory (non-recursively) and returns every
	// .dat file with its content, ordered by file name.
	ScanDirectory(dir string) (ScanResult, error)
}

// RecordParser turns the content of one input file into records.
// Malformed lines are reported as issues, never as an error.
type RecordParser interface {
	Parse(file SourceFile) ParseResult
}

// FileWriter persists a complete file so that readers never observe a
// partially written destination.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// Exporter publishes an aggregated RecordSet to an external store.
type Exporter interface {
	Export(ctx context.Context, set RecordSet) error
}

// ErrorClassifier determines whether an error is transient (retryable) or fatal.
type ErrorClassifier interface {
	// IsTransient returns true if the error is temporary and the operation should be retried.
	IsTransient(err error) bool
}

// BackoffStrategy calculates the delay before the next retry attempt.
type BackoffStrategy interface {
	// NextDelay returns the duration to wait before the next attempt.
	// attempt is zero-indexed (0 = first retry, 1 = second retry, etc.)
	NextDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of retry attempts (0 = no retries, -1 = unlimited)
	MaxAttempts() int
}

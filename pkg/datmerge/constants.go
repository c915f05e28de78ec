package datmerge

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess      = 0  // Merge completed successfully
	ExitGeneralError = 1  // Unknown or unclassified error
	ExitUsageError   = 2  // CLI usage error (missing flags, invalid flags)
	ExitPanic        = 3  // Internal panic (unexpected crash)
	ExitConfigError  = 10 // Invalid configuration
	ExitInputError   = 11 // Input directory missing or unreadable
	ExitExportError  = 12 // PostgreSQL export failed
	ExitWriteError   = 13 // Output file could not be written
)

const (
	// DataFileExtension is the extension of input files, matched case-insensitively.
	DataFileExtension = ".dat"

	// DefaultOutputPath is where the combined CSV is written unless overridden.
	DefaultOutputPath = "result/combined_data.csv"

	// DefaultDelimiter separates fields in input files.
	DefaultDelimiter = ','

	// DefaultTable is the PostgreSQL table replaced by the export.
	DefaultTable = "combined_salary"

	// DefaultTimeout bounds a whole run, including the optional export.
	DefaultTimeout = 5 * time.Minute

	// HeaderKey and HeaderTotal name the columns of the output file.
	HeaderKey   = "identity_key"
	HeaderTotal = "total_salary"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3
)

// OutputHeader returns the header row of the output file.
func OutputHeader() []string {
	return []string{HeaderKey, HeaderTotal}
}

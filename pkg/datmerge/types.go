package datmerge

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// ValidTableName reports whether name is a lowercase, unquoted PostgreSQL identifier.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// MergeConfig contains all parameters needed for one merge run.
type MergeConfig struct {
	// InputDir is the directory scanned (non-recursively) for .dat files
	InputDir string

	// OutputPath is the destination CSV file
	OutputPath string

	// Delimiter separates fields in the .dat files
	Delimiter rune

	// HasHeader treats the first non-blank line of every file as a header row
	HasHeader bool

	// KeyColumn is the zero-based column holding the identity key
	KeyColumn int

	// SalaryColumns are the zero-based columns holding salary components.
	// Empty means every column except KeyColumn.
	SalaryColumns []int

	// RequireInput fails the run when the directory holds no .dat files
	RequireInput bool

	// ReportPath, when set, receives a YAML run summary
	ReportPath string

	// DatabaseURL, when set, publishes the result to PostgreSQL
	DatabaseURL string

	// Table is the PostgreSQL table replaced by the export
	Table string

	// Verbose enables detailed logging
	Verbose bool
}

// Validate checks if the MergeConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *MergeConfig) Validate() error {
	var errs []error

	if c.InputDir == "" {
		errs = append(errs, fmt.Errorf("InputDir is required: %w", ErrInvalidConfig))
	}

	if c.OutputPath == "" {
		errs = append(errs, fmt.Errorf("OutputPath is required: %w", ErrInvalidConfig))
	}

	switch c.Delimiter {
	case 0, '"', '\r', '\n', '#':
		errs = append(errs, fmt.Errorf("delimiter %q is not usable: %w", c.Delimiter, ErrInvalidConfig))
	}

	if c.KeyColumn < 0 {
		errs = append(errs, fmt.Errorf("key column cannot be negative: %w", ErrInvalidConfig))
	}

	seen := make(map[int]bool, len(c.SalaryColumns))
	for _, col := range c.SalaryColumns {
		switch {
		case col < 0:
			errs = append(errs, fmt.Errorf("salary column %d cannot be negative: %w", col, ErrInvalidConfig))
		case col == c.KeyColumn:
			errs = append(errs, fmt.Errorf("salary column %d is also the key column: %w", col, ErrInvalidConfig))
		case seen[col]:
			errs = append(errs, fmt.Errorf("salary column %d listed twice: %w", col, ErrInvalidConfig))
		}
		seen[col] = true
	}

	if c.DatabaseURL != "" && c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required when DatabaseURL is set: %w", ErrInvalidConfig))
	}

	if c.Table != "" && !ValidTableName(c.Table) {
		errs = append(errs, fmt.Errorf("table name %q must match %s: %w", c.Table, tableNamePattern, ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// SourceFile is one .dat file read from the input directory.
type SourceFile struct {
	Name        string
	Path        string
	SizeBytes   int64
	Content     []byte
	Checksum    string // SHA-256 of normalized content
	ChecksumRaw string // SHA-256 of raw content
}

// ScanResult contains the results of scanning an input directory.
type ScanResult struct {
	Files []SourceFile
}

// Record is one parsed line of an input file.
type Record struct {
	Key      string
	Salaries []float64
	Source   string
	Line     int
}

// Total returns the sum of the record's salary components.
func (r Record) Total() float64 {
	var sum float64
	for _, s := range r.Salaries {
		sum += s
	}
	return sum
}

// Fingerprint identifies a record by key and salary values.
// Records with equal fingerprints are duplicates.
func (r Record) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strconv.Quote(r.Key))
	for _, s := range r.Salaries {
		b.WriteByte('|')
		b.WriteString(FormatAmount(s))
	}
	return b.String()
}

// ParseIssue describes an input line that was skipped.
type ParseIssue struct {
	File   string `yaml:"file"`
	Line   int    `yaml:"line"`
	Reason string `yaml:"reason"`
}

// ParseResult is the outcome of parsing one file.
type ParseResult struct {
	Header  []string
	Records []Record
	Issues  []ParseIssue
	Lines   int
}

// Entry is the aggregated compensation of one identity.
type Entry struct {
	Key   string
	Total float64
}

// Row returns the flattened output row for the entry.
func (e Entry) Row() []string {
	return []string{e.Key, FormatAmount(e.Total)}
}

// RecordSet is the deduplicated, aggregated result of one run, ordered by key.
type RecordSet struct {
	Entries    []Entry
	Duplicates int
}

// Len returns the number of identities in the set.
func (s RecordSet) Len() int {
	return len(s.Entries)
}

// Stats are the salary statistics of a RecordSet.
type Stats struct {
	Identities    int      `yaml:"identities"`
	GrandTotal    float64  `yaml:"grand_total"`
	Average       float64  `yaml:"average"`
	Highest       float64  `yaml:"highest"`
	SecondHighest *float64 `yaml:"second_highest"`
}

// Summary reports what a merge run did.
type Summary struct {
	DatasetID     string       `yaml:"dataset_id"`
	InputDir      string       `yaml:"input_dir"`
	OutputPath    string       `yaml:"output_path"`
	Files         []FileReport `yaml:"files"`
	LinesRead     int          `yaml:"lines_read"`
	RecordsParsed int          `yaml:"records_parsed"`
	Duplicates    int          `yaml:"duplicates"`
	SkippedLines  int          `yaml:"skipped_lines"`
	Issues        []ParseIssue `yaml:"issues,omitempty"`
	Stats         Stats        `yaml:"stats"`
	Exported      bool         `yaml:"exported"`
}

// FileReport is the per-file part of a Summary.
type FileReport struct {
	Name        string `yaml:"name"`
	Checksum    string `yaml:"sha256"`
	ChecksumRaw string `yaml:"sha256_raw"`
	Lines       int    `yaml:"lines"`
	Records     int    `yaml:"records"`
	Skipped     int    `yaml:"skipped"`
}

// FormatAmount renders a salary the way it is written to the output file.
// Whole amounts print without a fractional part.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

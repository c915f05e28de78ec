// Package records turns the content of a .dat file into typed records.
//
// Each physical line is one record. Fields are split with encoding/csv so
// quoted keys may contain the delimiter. Blank lines and lines starting
// with '#' are ignored. A line that cannot be turned into a record is not
// fatal: it is reported as a datmerge.ParseIssue and skipped, and the rest
// of the file is still parsed.
package records

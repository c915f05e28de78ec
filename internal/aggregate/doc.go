// Package aggregate collapses duplicate records and sums salaries per identity.
//
// Two records are duplicates when they share the identity key and every
// salary component; a duplicate contributes once no matter how many files
// repeat it. Records with the same key but different values are distinct
// contributions and their totals are added. The result is ordered by key so
// that repeated runs over the same input produce identical output.
package aggregate

// Package files groups the input-side file handling of datmerge.
//
// Sub-packages:
//   - filesystem: filesystem abstraction with OS and in-memory implementations
//   - scanner: discovery and reading of the .dat files of an input directory
//
// # Usage
//
//	fileScanner := scanner.NewScanner(checksum.New())
//	result, err := fileScanner.ScanDirectory("./data")
package files

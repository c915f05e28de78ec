// Package services wires the merge pipeline together.
//
// MergeService runs the stages in order: scan the input directory, parse
// every file, aggregate, write the CSV, then the optional PostgreSQL
// export and YAML report. Stages run on the calling goroutine and the
// context is checked between them.
package services

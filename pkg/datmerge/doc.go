// Package datmerge holds the public types of the datmerge tool: the record
// model, run configuration and summary, the typed errors with their exit
// codes, and the interfaces the merge pipeline is assembled from.
package datmerge

// Package db opens PostgreSQL connection pools for the export sink.
//
// Connecting is retried on transient failures (server starting up,
// connection refused, too many connections) using the retry package.
// Errors that survive the retries are rewritten with a short list of
// likely causes, and connection strings are redacted before they are
// logged.
package db

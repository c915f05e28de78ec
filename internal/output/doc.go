// Package output renders merge results and writes them to disk.
//
// Files are written atomically: content goes to a temporary file in the
// destination directory, which is flushed, synced and renamed over the
// destination. Readers never observe a partially written file, and a
// failed write leaves any previous file untouched.
package output

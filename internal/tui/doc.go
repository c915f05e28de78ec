// Package tui renders human-facing terminal output.
//
// Output is styled with lipgloss only when stdout is a terminal and the
// environment does not ask for plain text (NO_COLOR, CI or
// DATMERGE_PLAIN=1). Everything else gets the same content unstyled, so
// logs and pipes stay easy to grep.
package tui

package tui

import (
	"os"

	"golang.org/x/term"
)

// Mode selects how final output is rendered.
type Mode int

const (
	// ModePlain is used for CI/CD pipelines, scripts, and redirected output.
	ModePlain Mode = iota
	// ModeStyled is used when a human is watching the terminal.
	ModeStyled
)

// DetectMode determines whether output to stdout should be styled.
//
// Returns ModePlain if:
//   - DATMERGE_PLAIN=1 is set
//   - CI is set (common CI/CD convention)
//   - NO_COLOR is set (https://no-color.org)
//   - stdout is not a terminal
//
// Returns ModeStyled otherwise.
func DetectMode() Mode {
	if os.Getenv("DATMERGE_PLAIN") == "1" {
		return ModePlain
	}
	if os.Getenv("CI") != "" {
		return ModePlain
	}
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModePlain
	}
	return ModeStyled
}

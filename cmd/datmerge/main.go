package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/datmerge/internal/cli"
	"github.com/vvka-141/datmerge/pkg/datmerge"
)

func main() {
	// Recover from panics to ensure graceful exits with stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(datmerge.ExitPanic)
		}
	}()

	if os.Getenv("DATMERGE_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(datmerge.ExitCodeForError(err))
	}
}

package logging

import (
	"io"
	"os"

	"golang.org/x/term"
)

// fdWriter is satisfied by os.File and wrappers that expose the descriptor.
type fdWriter interface {
	Fd() uintptr
}

// IsTTY reports whether w writes to a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(fdWriter)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SupportsColor reports whether w can render ANSI color. Non-TTY writers,
// NO_COLOR (https://no-color.org), and TERM=dumb all disable it.
func SupportsColor(w io.Writer) bool {
	return supportsColor(IsTTY(w))
}

func supportsColor(isTTY bool) bool {
	if !isTTY {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

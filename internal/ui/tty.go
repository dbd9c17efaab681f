package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// getTTY returns file handles for the form.
// Uses /dev/tty when stdout carries the PDF so the form never mixes into it.
func getTTY() (in *os.File, out *os.File, cleanup func()) {
	var closers []func()

	if !isTerminal(os.Stdout) {
		out, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		if err != nil {
			out = os.Stderr
		} else {
			closers = append(closers, func() { out.Close() })
		}

		in, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			in = os.Stdin
		} else {
			closers = append(closers, func() { in.Close() })
		}

		// Color detection follows the tty, not the redirected stdout
		lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(out))
		styles = DefaultStyles()

		return in, out, func() {
			for _, c := range closers {
				c()
			}
		}
	}

	return os.Stdin, os.Stdout, func() {}
}

// isTerminal reports whether f is a character device; a failed Stat counts
// as not a terminal
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

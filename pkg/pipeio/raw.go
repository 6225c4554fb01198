package pipeio

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// MakeRaw switches r to raw mode if it is a terminal. The returned
// function restores the previous state. For anything else it does
// nothing.
func MakeRaw(r io.Reader) (restore func(), err error) {
	f, ok := r.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}, nil
	}

	oldState, err := term.MakeRaw(int(f.Fd()))
	if err != nil {
		return nil, fmt.Errorf("setting terminal to raw mode: %s", err)
	}

	return func() {
		_ = term.Restore(int(f.Fd()), oldState)
		fmt.Fprint(os.Stderr, "\033[2K\r") // clear line
	}, nil
}

// ClearScreen clears the terminal on w and moves the cursor home.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// RawWriter writes text to a terminal in raw mode, where the terminal no
// longer turns a newline into carriage return plus newline.
type RawWriter struct {
	w io.Writer
}

// NewRawWriter wraps w.
func NewRawWriter(w io.Writer) *RawWriter {
	return &RawWriter{w: w}
}

func (rw *RawWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\n", "\r\n")
	if _, err := io.WriteString(rw.w, s); err != nil {
		return 0, err
	}
	return len(p), nil
}

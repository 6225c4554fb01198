package pipeio

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/muesli/cancelreader"
)

// ErrInterrupted is returned by ReadKeys when the user pressed Ctrl-C or
// Ctrl-D.
var ErrInterrupted = errors.New("interrupted")

const (
	ctrlC = 0x03
	ctrlD = 0x04
)

// ReadLines calls fn with every line read from r, newline included. A
// final line without newline is passed as is. It returns nil once r is
// exhausted or canceled.
func ReadLines(r io.Reader, fn func(string)) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			fn(line)
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

// ReadKeys calls fn with the keystrokes read from r as soon as they
// arrive. Carriage returns are translated to newlines. It returns
// ErrInterrupted on Ctrl-C or Ctrl-D, and nil once r is exhausted.
func ReadKeys(r io.Reader, fn func(string)) error {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			keys := buf[:n]
			if i := indexInterrupt(keys); i >= 0 {
				if i > 0 {
					fn(translateKeys(keys[:i]))
				}
				return ErrInterrupted
			}
			fn(translateKeys(keys))
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func indexInterrupt(b []byte) int {
	for i, c := range b {
		if c == ctrlC || c == ctrlD {
			return i
		}
	}
	return -1
}

func translateKeys(b []byte) string {
	return strings.ReplaceAll(string(b), "\r", "\n")
}

func endOfInput(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, cancelreader.ErrCanceled) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

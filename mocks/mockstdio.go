package mocks

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// MockStdio stands in for the terminal. Stdin is a pipe fed with
// WriteToStdin, stdout collects everything written to it.
type MockStdio struct {
	stdinR *io.PipeReader
	stdinW *io.PipeWriter

	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

// NewMockStdio creates a terminal with empty input and output.
func NewMockStdio() *MockStdio {
	r, w := io.Pipe()
	return &MockStdio{stdinR: r, stdinW: w}
}

// WriteToStdin types data. It blocks until the application reads it.
func (m *MockStdio) WriteToStdin(data []byte) (int, error) {
	return m.stdinW.Write(data)
}

// ReadFromStdout returns everything written to stdout so far.
func (m *MockStdio) ReadFromStdout() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

// GetStdin returns the input side handed to the application.
func (m *MockStdio) GetStdin() io.Reader {
	return m.stdinR
}

// GetStdout returns the output side handed to the application.
func (m *MockStdio) GetStdout() io.Writer {
	return stdout{m}
}

// WaitForOutput polls stdout until it contains expected.
func (m *MockStdio) WaitForOutput(expected string, timeoutMs int) error {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for {
		got := m.ReadFromStdout()
		if strings.Contains(got, expected) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for output %q, got: %q", expected, got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// Close ends stdin. Later writes to stdout fail with io.ErrClosedPipe.
func (m *MockStdio) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.stdinW.Close()
}

type stdout struct{ m *MockStdio }

func (s stdout) Write(p []byte) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if s.m.closed {
		return 0, io.ErrClosedPipe
	}
	return s.m.out.Write(p)
}

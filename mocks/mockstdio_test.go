package mocks

import (
	"errors"
	"io"
	"testing"
)

func TestMockStdio(t *testing.T) {
	t.Parallel()

	m := NewMockStdio()

	go m.WriteToStdin([]byte("typed"))
	buf := make([]byte, 16)
	n, err := m.GetStdin().Read(buf)
	if err != nil || string(buf[:n]) != "typed" {
		t.Fatalf("Read() = %q, %v", buf[:n], err)
	}

	io.WriteString(m.GetStdout(), "shown")
	if err := m.WaitForOutput("shown", 100); err != nil {
		t.Fatal(err)
	}
	if err := m.WaitForOutput("missing", 20); err == nil {
		t.Error("WaitForOutput() should time out")
	}

	m.Close()
	if _, err := m.GetStdin().Read(buf); !errors.Is(err, io.EOF) {
		t.Errorf("Read() after Close error = %v, want EOF", err)
	}
	if _, err := m.GetStdout().Write([]byte("late")); !errors.Is(err, io.ErrClosedPipe) {
		t.Errorf("Write() after Close error = %v, want ErrClosedPipe", err)
	}
}

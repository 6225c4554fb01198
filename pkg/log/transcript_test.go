package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

type bufCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufCloser) Close() error {
	b.closed = true
	return nil
}

func TestTranscript_RecordsBothDirections(t *testing.T) {
	t.Parallel()

	buf := &bufCloser{}
	tr := newTranscript(buf)

	tr.Received("hello ")
	tr.Sent("world\n")
	tr.Received("")

	if got := buf.String(); got != "hello world\n" {
		t.Errorf("transcript = %q; want %q", got, "hello world\n")
	}

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !buf.closed {
		t.Error("Close() did not close the writer")
	}
}

func TestTranscript_Nil(t *testing.T) {
	t.Parallel()

	var tr *Transcript
	tr.Received("x")
	tr.Sent("y")
	if err := tr.Close(); err != nil {
		t.Errorf("Close() on nil transcript = %v", err)
	}
}

func TestNewTranscript_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.log")
	tr, err := NewTranscript(path)
	if err != nil {
		t.Fatalf("NewTranscript() error = %v", err)
	}

	tr.Received("ping\n")
	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading transcript: %v", err)
	}
	if string(data) != "ping\n" {
		t.Errorf("file content = %q; want %q", data, "ping\n")
	}
}

func TestNewTranscript_EmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := NewTranscript(""); err == nil {
		t.Error("NewTranscript(\"\") should fail")
	}
}

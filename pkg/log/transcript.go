package log

import (
	"fmt"
	"io"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Transcript records the raw text of a session, both directions.
// The file rotates once it reaches MaxSize megabytes.
type Transcript struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// Transcript rotation defaults.
const (
	TranscriptMaxSizeMB  = 10
	TranscriptMaxBackups = 3
)

// NewTranscript opens (or appends to) the transcript at path.
func NewTranscript(path string) (*Transcript, error) {
	if path == "" {
		return nil, fmt.Errorf("transcript path is empty")
	}

	return newTranscript(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    TranscriptMaxSizeMB,
		MaxBackups: TranscriptMaxBackups,
	}), nil
}

func newTranscript(w io.WriteCloser) *Transcript {
	return &Transcript{w: w}
}

// Received appends text that came from the remote side.
func (t *Transcript) Received(text string) {
	t.write(text)
}

// Sent appends text that was sent to the remote side.
func (t *Transcript) Sent(text string) {
	t.write(text)
}

func (t *Transcript) write(text string) {
	if t == nil || text == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, text)
}

// Close closes the underlying file. Safe on a nil transcript.
func (t *Transcript) Close() error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	return t.w.Close()
}

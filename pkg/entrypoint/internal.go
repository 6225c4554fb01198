package entrypoint

import (
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/log"
	"dominicbreuker/netterm/pkg/pipeio"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"io"
	"sync"
)

// transportFactory creates the transports of one session and a function
// that releases them.
type transportFactory func(cfg *config.Shared) (*transport.Set, func())

// realTransportFactory returns the socket platform used in production.
func realTransportFactory() transportFactory {
	return func(cfg *config.Shared) (*transport.Set, func()) {
		p := socket.New(cfg.Deps, cfg.Logger)
		return transport.New(p), p.Shutdown
	}
}

// session connects the terminal with whatever endpoint is active. It
// prints received text, reads user input and keeps the transcript.
type session struct {
	logger *log.Logger
	raw    bool

	stdio      *pipeio.Stdio
	stdin      io.Reader
	transcript *log.Transcript
	restore    func()

	mu  sync.Mutex // serializes terminal output
	out io.Writer
}

func newSession(cfg *config.Shared) (*session, error) {
	stdin := config.GetStdinFunc(cfg.Deps)()
	stdout := config.GetStdoutFunc(cfg.Deps)()

	s := &session{
		logger:  cfg.Logger,
		raw:     cfg.Raw,
		stdin:   stdin,
		out:     stdout,
		restore: func() {},
	}

	if cfg.LogFile != "" {
		t, err := log.NewTranscript(cfg.LogFile)
		if err != nil {
			return nil, fmt.Errorf("opening transcript: %w", err)
		}
		s.transcript = t
	}

	if cfg.Clear {
		pipeio.ClearScreen(stdout)
	}

	if cfg.Raw {
		restore, err := pipeio.MakeRaw(stdin)
		if err != nil {
			s.transcript.Close()
			return nil, err
		}
		s.restore = restore
		s.out = pipeio.NewRawWriter(stdout)
	}

	s.stdio = pipeio.NewStdio(stdin, s.out)
	return s, nil
}

// received prints text that arrived from the remote side.
func (s *session) received(text string) {
	s.write(text)
	s.transcript.Received(text)
}

func (s *session) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := io.WriteString(s.stdio, text); err != nil {
		s.logger.VerboseMsg("writing to terminal: %s", err)
	}
}

// readInput feeds user input to send until stdin ends. Lines are sent
// whole unless the session is raw, in which case every keystroke is
// echoed and sent immediately. The channel yields nil when the user
// ended the session.
func (s *session) readInput(send func(string)) <-chan error {
	done := make(chan error, 1)

	go func() {
		if !s.raw {
			done <- pipeio.ReadLines(s.stdio, func(line string) {
				s.transcript.Sent(line)
				send(line)
			})
			return
		}

		err := pipeio.ReadKeys(s.stdio, func(keys string) {
			s.write(keys)
			s.transcript.Sent(keys)
			send(keys)
		})
		if err == pipeio.ErrInterrupted {
			err = nil
		}
		done <- err
	}()

	return done
}

func (s *session) close() {
	s.stdio.Close()
	s.restore()
	if err := s.transcript.Close(); err != nil {
		s.logger.ErrorMsg("closing transcript: %s\n", err)
	}
}

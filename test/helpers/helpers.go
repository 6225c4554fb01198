// Package helpers provides common utilities for integration and end-to-end tests.
package helpers

import (
	"bytes"
	"dominicbreuker/netterm/mocks"
	"dominicbreuker/netterm/mocks/tcp"
	"dominicbreuker/netterm/mocks/udp"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/log"
	"sync"
)

// Side is one terminal of a session: its config, terminal and log output.
type Side struct {
	Cfg   *config.Shared
	Stdio *mocks.MockStdio
	Logs  *Buffer
}

// Setup holds a listening and a connecting side sharing mocked networks.
type Setup struct {
	TCPNetwork *tcp.MockTCPNetwork
	UDPNetwork *udp.MockUDPNetwork

	proto     config.Protocol
	extra     []*Side
	Listener  *Side
	Connector *Side
}

// NewSetup prepares both sides for proto on 127.0.0.1:12345.
func NewSetup(proto config.Protocol) *Setup {
	s := &Setup{
		TCPNetwork: tcp.NewMockTCPNetwork(),
		UDPNetwork: udp.NewMockUDPNetwork(),
		proto:      proto,
	}
	s.Listener = s.newSide(proto, true)
	s.Connector = s.newSide(proto, false)
	return s
}

// NewConnector returns another connecting side on the same networks.
func (s *Setup) NewConnector() *Side {
	side := s.newSide(s.proto, false)
	s.extra = append(s.extra, side)
	return side
}

func (s *Setup) newSide(proto config.Protocol, listen bool) *Side {
	stdio := mocks.NewMockStdio()
	logs := &Buffer{}

	return &Side{
		Stdio: stdio,
		Logs:  logs,
		Cfg: &config.Shared{
			Protocol: proto,
			Host:     "127.0.0.1",
			Port:     12345,
			Listen:   listen,
			Logger:   log.NewLoggerTo(logs, true),
			Deps: &config.Dependencies{
				TCPDialer:   s.TCPNetwork.DialTCP,
				TCPListener: s.TCPNetwork.ListenTCP,
				UDPListener: s.UDPNetwork.ListenUDP,
				Stdin:       stdio.GetStdin,
				Stdout:      stdio.GetStdout,
			},
		},
	}
}

// Close releases the terminals of both sides.
func (s *Setup) Close() {
	s.Listener.Stdio.Close()
	s.Connector.Stdio.Close()
	for _, side := range s.extra {
		side.Stdio.Close()
	}
}

// Buffer is a bytes.Buffer safe for concurrent use.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

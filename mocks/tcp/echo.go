package tcp

import (
	"bufio"
	"dominicbreuker/netterm/pkg/config"
	"net"
	"sync"
)

// EchoServer answers every line it receives with prefix + line.
type EchoServer struct {
	ln     net.Listener
	prefix string

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

// NewEchoServer listens on addr with listen, typically the ListenTCP of a
// MockTCPNetwork.
func NewEchoServer(listen config.TCPListenerFunc, addr string, prefix string) (*EchoServer, error) {
	laddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}

	ln, err := listen("tcp", laddr)
	if err != nil {
		return nil, err
	}

	s := &EchoServer{ln: ln, prefix: prefix, conns: make(map[net.Conn]struct{})}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Addr returns the listening address.
func (s *EchoServer) Addr() net.Addr {
	return s.ln.Addr()
}

// Close stops accepting, drops all connections and waits for them.
func (s *EchoServer) Close() error {
	err := s.ln.Close()

	s.mu.Lock()
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *EchoServer) serve() {
	defer s.wg.Done()
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		s.conns[c] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.echo(c)
	}
}

func (s *EchoServer) echo(c net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.Close()
	}()

	br := bufio.NewReader(c)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return
		}
		if _, err := c.Write([]byte(s.prefix + line)); err != nil {
			return
		}
	}
}

// Package tcp provides an in-memory TCP network for tests. Connections are
// net.Pipe pairs, so writes block until the other side reads.
package tcp

import (
	"fmt"
	"net"
	"sync"
	"syscall"
	"time"
)

// MockTCPNetwork routes dials to listeners by address.
type MockTCPNetwork struct {
	mu        sync.Mutex
	cond      *sync.Cond // signalled when listeners change
	listeners map[string]*MockTCPListener
	nextPort  int
}

// NewMockTCPNetwork creates an empty network.
func NewMockTCPNetwork() *MockTCPNetwork {
	m := &MockTCPNetwork{listeners: make(map[string]*MockTCPListener)}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// ListenTCP registers a listener on laddr. Port 0 picks a free port.
func (m *MockTCPNetwork) ListenTCP(network string, laddr *net.TCPAddr) (net.Listener, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if laddr.Port == 0 {
		laddr = m.ephemeral(laddr.IP)
	}
	addr := laddr.String()
	if _, exists := m.listeners[addr]; exists {
		return nil, &net.OpError{Op: "listen", Net: network, Addr: laddr, Err: syscall.EADDRINUSE}
	}

	l := &MockTCPListener{
		addr:    laddr,
		network: m,
		backlog: make(chan *MockTCPConn, 16),
		done:    make(chan struct{}),
	}
	m.listeners[addr] = l
	m.cond.Broadcast()
	return l, nil
}

// DialTCP connects to the listener on raddr. Without one the dial is
// refused the way the kernel refuses it.
func (m *MockTCPNetwork) DialTCP(network string, laddr, raddr *net.TCPAddr) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("unsupported network type: %s", network)
	}

	m.mu.Lock()
	l, exists := m.listeners[raddr.String()]
	if laddr == nil {
		laddr = m.ephemeral(net.IPv4(127, 0, 0, 1))
	}
	m.mu.Unlock()

	if !exists {
		return nil, &net.OpError{Op: "dial", Net: network, Addr: raddr, Err: syscall.ECONNREFUSED}
	}

	local, remote := net.Pipe()
	client := &MockTCPConn{Conn: local, local: laddr, remote: raddr}
	server := &MockTCPConn{Conn: remote, local: raddr, remote: laddr}

	select {
	case l.backlog <- server:
		return client, nil
	case <-l.done:
	case <-time.After(time.Second):
	}
	local.Close()
	remote.Close()
	return nil, &net.OpError{Op: "dial", Net: network, Addr: raddr, Err: syscall.ECONNREFUSED}
}

// WaitForListener waits until something listens on addr.
func (m *MockTCPNetwork) WaitForListener(addr string, timeoutMs int) (*MockTCPListener, error) {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)

	m.mu.Lock()
	defer m.mu.Unlock()

	for {
		if l, exists := m.listeners[addr]; exists {
			return l, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("timeout waiting for listener on %s", addr)
		}

		// wake up periodically to check the deadline
		go func() {
			time.Sleep(50 * time.Millisecond)
			m.cond.Broadcast()
		}()
		m.cond.Wait()
	}
}

// ephemeral returns a free address on ip. Callers hold m.mu.
func (m *MockTCPNetwork) ephemeral(ip net.IP) *net.TCPAddr {
	for {
		m.nextPort++
		addr := &net.TCPAddr{IP: ip, Port: 50000 + m.nextPort}
		if _, exists := m.listeners[addr.String()]; !exists {
			return addr
		}
	}
}

// MockTCPListener is the net.Listener returned by ListenTCP.
type MockTCPListener struct {
	addr    *net.TCPAddr
	network *MockTCPNetwork
	backlog chan *MockTCPConn

	once     sync.Once
	done     chan struct{}
	mu       sync.Mutex
	accepted int
}

var _ net.Listener = (*MockTCPListener)(nil)

// Accept returns the next dialed connection.
func (l *MockTCPListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.backlog:
		l.mu.Lock()
		l.accepted++
		l.mu.Unlock()
		return c, nil
	case <-l.done:
		return nil, &net.OpError{Op: "accept", Net: "tcp", Addr: l.addr, Err: net.ErrClosed}
	}
}

// Accepted returns how many connections Accept handed out.
func (l *MockTCPListener) Accepted() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accepted
}

// Close unregisters the listener. Pending dials are refused.
func (l *MockTCPListener) Close() error {
	l.once.Do(func() {
		close(l.done)

		l.network.mu.Lock()
		delete(l.network.listeners, l.addr.String())
		l.network.mu.Unlock()
	})
	return nil
}

// Addr returns the listening address.
func (l *MockTCPListener) Addr() net.Addr {
	return l.addr
}

// MockTCPConn is one end of a mocked connection with TCP addresses.
type MockTCPConn struct {
	net.Conn
	local  *net.TCPAddr
	remote *net.TCPAddr
}

var _ net.Conn = (*MockTCPConn)(nil)

// LocalAddr returns the local TCP address.
func (c *MockTCPConn) LocalAddr() net.Addr { return c.local }

// RemoteAddr returns the peer TCP address.
func (c *MockTCPConn) RemoteAddr() net.Addr { return c.remote }

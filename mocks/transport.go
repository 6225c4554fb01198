package mocks

import (
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/netcode"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"strings"
	"sync"
	"time"
)

// Call is one recorded transport operation, e.g. "tcp.SetPaused".
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return fmt.Sprintf("%s(%s)", c.Op, strings.Join(args, ", "))
}

// MockTransports is a set of fake transports that record every call in
// one shared log and resolve every operation immediately. Events are
// injected with the Emit helpers.
type MockTransports struct {
	TCP       *MockStreamTransport
	TCPServer *MockListenerTransport
	UDP       *MockDatagramTransport

	mu     sync.Mutex
	calls  []Call
	fail   map[string]error
	infos  map[socket.ID]socket.Info
	nextID socket.ID
}

// NewMockTransports creates an empty set of fake transports.
func NewMockTransports() *MockTransports {
	m := &MockTransports{
		fail:  make(map[string]error),
		infos: make(map[socket.ID]socket.Info),
	}
	m.TCP = &MockStreamTransport{fakeSocket: fakeSocket{m: m, kind: "tcp"}}
	m.TCPServer = &MockListenerTransport{fakeSocket: fakeSocket{m: m, kind: "tcpServer"}}
	m.UDP = &MockDatagramTransport{fakeSocket: fakeSocket{m: m, kind: "udp"}}
	return m
}

// Set returns the fakes as a transport set.
func (m *MockTransports) Set() *transport.Set {
	return &transport.Set{
		TCP:       m.TCP,
		TCPServer: m.TCPServer,
		UDP:       m.UDP,
		Network:   m,
	}
}

// Fail makes every later call of op ("tcp.Connect", ...) fail with err.
// A nil err removes the failure.
func (m *MockTransports) Fail(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, op)
		return
	}
	m.fail[op] = err
}

// SetInfo sets the result of GetInfo for id on all transports.
func (m *MockTransports) SetInfo(id socket.ID, info socket.Info) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos[id] = info
}

// NextID returns the id the next Create call will return.
func (m *MockTransports) NextID() socket.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID + 1
}

// Calls returns a copy of the call log.
func (m *MockTransports) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// Ops returns the names of all recorded operations, in order.
func (m *MockTransports) Ops() []string {
	calls := m.Calls()
	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}
	return ops
}

// Count returns how often op was called.
func (m *MockTransports) Count(op string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Reset clears the call log.
func (m *MockTransports) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// WaitForCall waits until op was recorded at least n times.
func (m *MockTransports) WaitForCall(op string, n int, timeoutMs int) error {
	deadline := time.Now().Add(time.Duration(timeoutMs) * time.Millisecond)
	for {
		if m.Count(op) >= n {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %d calls of %s, got: %v", n, op, m.Ops())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// GetNetworkList returns a single fake interface.
func (m *MockTransports) GetNetworkList() *transport.Future[[]socket.NetworkInterface] {
	err := m.record("network.GetNetworkList")
	if err != nil {
		return transport.Resolved[[]socket.NetworkInterface](nil, err)
	}
	return transport.Resolved([]socket.NetworkInterface{{Name: "eth0", Address: "192.0.2.10", PrefixLength: 24}}, nil)
}

func (m *MockTransports) record(op string, args ...any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op, Args: args})
	return m.fail[op]
}

func (m *MockTransports) create() socket.ID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	return m.nextID
}

func (m *MockTransports) info(id socket.ID) socket.Info {
	m.mu.Lock()
	defer m.mu.Unlock()
	info, ok := m.infos[id]
	if !ok {
		info = socket.Info{SocketID: id}
	}
	return info
}

// fakeSocket implements transport.Socket for one kind.
type fakeSocket struct {
	m    *MockTransports
	kind string
}

func resolve[T any](s fakeSocket, name string, v T, args ...any) *transport.Future[T] {
	if err := s.m.record(s.kind+"."+name, args...); err != nil {
		var zero T
		return transport.Resolved(zero, err)
	}
	return transport.Resolved(v, nil)
}

func (s fakeSocket) Create(props socket.Properties) *transport.Future[socket.CreateInfo] {
	if err := s.m.record(s.kind+".Create", props); err != nil {
		return transport.Resolved(socket.CreateInfo{}, err)
	}
	return transport.Resolved(socket.CreateInfo{SocketID: s.m.create()}, nil)
}

func (s fakeSocket) SetPaused(id socket.ID, paused bool) *transport.Future[socket.Empty] {
	return resolve(s, "SetPaused", socket.Empty{}, id, paused)
}

func (s fakeSocket) Close(id socket.ID) *transport.Future[socket.Empty] {
	return resolve(s, "Close", socket.Empty{}, id)
}

func (s fakeSocket) GetInfo(id socket.ID) *transport.Future[socket.Info] {
	return resolve(s, "GetInfo", s.m.info(id), id)
}

func (s fakeSocket) GetSockets() *transport.Future[[]socket.Info] {
	return resolve[[]socket.Info](s, "GetSockets", nil)
}

// MockStreamTransport is a fake transport.StreamTransport.
type MockStreamTransport struct {
	fakeSocket

	Receive      event.Signal[socket.ReceiveInfo]
	ReceiveError event.Signal[socket.ReceiveErrorInfo]
}

var _ transport.StreamTransport = (*MockStreamTransport)(nil)

func (t *MockStreamTransport) Connect(id socket.ID, host string, port int) *transport.Future[socket.Empty] {
	return resolve(t.fakeSocket, "Connect", socket.Empty{}, id, host, port)
}

func (t *MockStreamTransport) Send(id socket.ID, data []byte) *transport.Future[socket.SendInfo] {
	return resolve(t.fakeSocket, "Send", socket.SendInfo{ResultCode: netcode.OK, BytesSent: len(data)}, id, string(data))
}

func (t *MockStreamTransport) SetKeepAlive(id socket.ID, enable bool, delay time.Duration) *transport.Future[socket.Empty] {
	return resolve(t.fakeSocket, "SetKeepAlive", socket.Empty{}, id, enable, delay)
}

func (t *MockStreamTransport) SetNoDelay(id socket.ID, noDelay bool) *transport.Future[socket.Empty] {
	return resolve(t.fakeSocket, "SetNoDelay", socket.Empty{}, id, noDelay)
}

func (t *MockStreamTransport) Disconnect(id socket.ID) *transport.Future[socket.Empty] {
	return resolve(t.fakeSocket, "Disconnect", socket.Empty{}, id)
}

func (t *MockStreamTransport) OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription {
	_ = t.m.record("tcp.OnReceive")
	return t.Receive.Subscribe(fn)
}

func (t *MockStreamTransport) OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription {
	_ = t.m.record("tcp.OnReceiveError")
	return t.ReceiveError.Subscribe(fn)
}

// EmitReceive delivers data for id to the receive subscribers.
func (t *MockStreamTransport) EmitReceive(id socket.ID, data []byte) {
	t.Receive.Emit(socket.ReceiveInfo{SocketID: id, Data: data})
}

// EmitReceiveError delivers a receive error for id.
func (t *MockStreamTransport) EmitReceiveError(id socket.ID, code netcode.Code) {
	t.ReceiveError.Emit(socket.ReceiveErrorInfo{SocketID: id, ResultCode: code})
}

// MockDatagramTransport is a fake transport.DatagramTransport.
type MockDatagramTransport struct {
	fakeSocket

	Receive      event.Signal[socket.ReceiveInfo]
	ReceiveError event.Signal[socket.ReceiveErrorInfo]
}

var _ transport.DatagramTransport = (*MockDatagramTransport)(nil)

func (u *MockDatagramTransport) Bind(id socket.ID, host string, port int) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "Bind", socket.Empty{}, id, host, port)
}

func (u *MockDatagramTransport) Send(id socket.ID, data []byte, host string, port int) *transport.Future[socket.SendInfo] {
	return resolve(u.fakeSocket, "Send", socket.SendInfo{ResultCode: netcode.OK, BytesSent: len(data)}, id, string(data), host, port)
}

func (u *MockDatagramTransport) SetBroadcast(id socket.ID, enabled bool) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "SetBroadcast", socket.Empty{}, id, enabled)
}

func (u *MockDatagramTransport) JoinGroup(id socket.ID, address string) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "JoinGroup", socket.Empty{}, id, address)
}

func (u *MockDatagramTransport) LeaveGroup(id socket.ID, address string) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "LeaveGroup", socket.Empty{}, id, address)
}

func (u *MockDatagramTransport) GetJoinedGroups(id socket.ID) *transport.Future[[]string] {
	return resolve[[]string](u.fakeSocket, "GetJoinedGroups", nil, id)
}

func (u *MockDatagramTransport) SetMulticastTimeToLive(id socket.ID, ttl int) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "SetMulticastTimeToLive", socket.Empty{}, id, ttl)
}

func (u *MockDatagramTransport) SetMulticastLoopbackMode(id socket.ID, enabled bool) *transport.Future[socket.Empty] {
	return resolve(u.fakeSocket, "SetMulticastLoopbackMode", socket.Empty{}, id, enabled)
}

func (u *MockDatagramTransport) OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription {
	_ = u.m.record("udp.OnReceive")
	return u.Receive.Subscribe(fn)
}

func (u *MockDatagramTransport) OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription {
	_ = u.m.record("udp.OnReceiveError")
	return u.ReceiveError.Subscribe(fn)
}

// EmitReceive delivers a datagram for id to the receive subscribers.
func (u *MockDatagramTransport) EmitReceive(id socket.ID, data []byte, host string, port int) {
	u.Receive.Emit(socket.ReceiveInfo{SocketID: id, Data: data, RemoteAddress: host, RemotePort: port})
}

// EmitReceiveError delivers a receive error for id.
func (u *MockDatagramTransport) EmitReceiveError(id socket.ID, code netcode.Code) {
	u.ReceiveError.Emit(socket.ReceiveErrorInfo{SocketID: id, ResultCode: code})
}

// MockListenerTransport is a fake transport.ListenerTransport.
type MockListenerTransport struct {
	fakeSocket

	Accept      event.Signal[socket.AcceptInfo]
	AcceptError event.Signal[socket.AcceptErrorInfo]
}

var _ transport.ListenerTransport = (*MockListenerTransport)(nil)

func (l *MockListenerTransport) Listen(id socket.ID, host string, port int, backlog int) *transport.Future[socket.Empty] {
	return resolve(l.fakeSocket, "Listen", socket.Empty{}, id, host, port, backlog)
}

func (l *MockListenerTransport) Disconnect(id socket.ID) *transport.Future[socket.Empty] {
	return resolve(l.fakeSocket, "Disconnect", socket.Empty{}, id)
}

func (l *MockListenerTransport) OnAccept(fn func(socket.AcceptInfo)) *event.Subscription {
	_ = l.m.record("tcpServer.OnAccept")
	return l.Accept.Subscribe(fn)
}

func (l *MockListenerTransport) OnAcceptError(fn func(socket.AcceptErrorInfo)) *event.Subscription {
	_ = l.m.record("tcpServer.OnAcceptError")
	return l.AcceptError.Subscribe(fn)
}

// EmitAccept announces clientID as accepted by the listener id.
func (l *MockListenerTransport) EmitAccept(id, clientID socket.ID) {
	l.Accept.Emit(socket.AcceptInfo{SocketID: id, ClientSocketID: clientID})
}

// EmitAcceptError delivers an accept error for the listener id.
func (l *MockListenerTransport) EmitAcceptError(id socket.ID, code netcode.Code) {
	l.AcceptError.Emit(socket.AcceptErrorInfo{SocketID: id, ResultCode: code})
}

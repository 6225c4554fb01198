// Package transport adapts the callback API of package socket to futures.
//
// Every operation of the platform is exposed as a method that invokes the
// native operation exactly once, synchronously, and returns a Future for
// its single result. Errors of the platform are passed through unchanged.
// Event sources are exposed as subscriptions.
//
// Client and server code depend on the interfaces in this package only,
// so tests can substitute recording fakes:
//
//	set := transport.New(socket.New(deps, logger))
//	info, err := set.TCP.Create(socket.Properties{}).Wait(ctx)
//	...
//	sub := set.TCP.OnReceive(func(r socket.ReceiveInfo) { ... })
//	defer sub.Cancel()
package transport

import (
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/socket"
	"time"
)

// Socket contains the operations shared by all socket kinds.
type Socket interface {
	Create(props socket.Properties) *Future[socket.CreateInfo]
	SetPaused(id socket.ID, paused bool) *Future[socket.Empty]
	Close(id socket.ID) *Future[socket.Empty]
	GetInfo(id socket.ID) *Future[socket.Info]
	GetSockets() *Future[[]socket.Info]
}

// StreamTransport is a TCP client socket API.
type StreamTransport interface {
	Socket
	Connect(id socket.ID, host string, port int) *Future[socket.Empty]
	Send(id socket.ID, data []byte) *Future[socket.SendInfo]
	SetKeepAlive(id socket.ID, enable bool, delay time.Duration) *Future[socket.Empty]
	SetNoDelay(id socket.ID, noDelay bool) *Future[socket.Empty]
	Disconnect(id socket.ID) *Future[socket.Empty]

	OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription
	OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription
}

// DatagramTransport is a UDP socket API.
type DatagramTransport interface {
	Socket
	Bind(id socket.ID, host string, port int) *Future[socket.Empty]
	Send(id socket.ID, data []byte, host string, port int) *Future[socket.SendInfo]
	SetBroadcast(id socket.ID, enabled bool) *Future[socket.Empty]
	JoinGroup(id socket.ID, address string) *Future[socket.Empty]
	LeaveGroup(id socket.ID, address string) *Future[socket.Empty]
	GetJoinedGroups(id socket.ID) *Future[[]string]
	SetMulticastTimeToLive(id socket.ID, ttl int) *Future[socket.Empty]
	SetMulticastLoopbackMode(id socket.ID, enabled bool) *Future[socket.Empty]

	OnReceive(fn func(socket.ReceiveInfo)) *event.Subscription
	OnReceiveError(fn func(socket.ReceiveErrorInfo)) *event.Subscription
}

// ListenerTransport is a TCP server socket API.
type ListenerTransport interface {
	Socket
	Listen(id socket.ID, host string, port int, backlog int) *Future[socket.Empty]
	Disconnect(id socket.ID) *Future[socket.Empty]

	OnAccept(fn func(socket.AcceptInfo)) *event.Subscription
	OnAcceptError(fn func(socket.AcceptErrorInfo)) *event.Subscription
}

// NetworkLister enumerates local network interfaces.
type NetworkLister interface {
	GetNetworkList() *Future[[]socket.NetworkInterface]
}

// Set bundles the transports of one platform.
type Set struct {
	TCP       StreamTransport
	TCPServer ListenerTransport
	UDP       DatagramTransport
	Network   NetworkLister
}

// New binds the transports to the API groups of p.
func New(p *socket.Platform) *Set {
	return &Set{
		TCP:       &tcp{api: p.TCP},
		TCPServer: &tcpServer{api: p.TCPServer},
		UDP:       &udp{api: p.UDP},
		Network:   &network{p: p},
	}
}

type network struct {
	p *socket.Platform
}

func (n *network) GetNetworkList() *Future[[]socket.NetworkInterface] {
	return Wrap0(n.p.GetNetworkList)()
}

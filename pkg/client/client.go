// Package client implements the Net Client: one TCP or UDP connection
// endpoint, either dialed out or adopted from a server's accept.
package client

import (
	"context"
	"dominicbreuker/netterm/pkg/codec"
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/event"
	"dominicbreuker/netterm/pkg/format"
	"dominicbreuker/netterm/pkg/log"
	"dominicbreuker/netterm/pkg/netcode"
	"dominicbreuker/netterm/pkg/socket"
	"dominicbreuker/netterm/pkg/transport"
	"fmt"
	"sync"
)

// Client is one endpoint of a TCP connection or a UDP socket that sends
// to a fixed remote address.
type Client struct {
	set    *transport.Set
	proto  config.Protocol
	host   string
	port   int
	props  socket.Properties
	logger *log.Logger

	enc *codec.Encoder

	mu     sync.Mutex
	handle socket.ID
	dec    *codec.Decoder
	data   event.Slot
	errs   event.Slot
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for verbose diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithProperties sets the properties of sockets created by Connect.
func WithProperties(props socket.Properties) Option {
	return func(c *Client) { c.props = props }
}

// New creates an unbound client for proto ("tcp" or "udp") and the remote
// host and port.
func New(set *transport.Set, proto string, host string, port int, opts ...Option) (*Client, error) {
	p, err := config.ParseProtocol(proto)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	c := &Client{
		set:   set,
		proto: p,
		host:  host,
		port:  port,
		enc:   codec.NewEncoder(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Protocol returns the transport protocol of the client.
func (c *Client) Protocol() config.Protocol { return c.proto }

// Host returns the remote host.
func (c *Client) Host() string { return c.host }

// Port returns the remote port.
func (c *Client) Port() int { return c.port }

// Handle returns the current socket, or socket.None.
func (c *Client) Handle() socket.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// URI returns proto://host:port.
func (c *Client) URI() string {
	return format.URI(c.proto.String(), c.host, c.port)
}

func (c *Client) sock() transport.Socket {
	if c.proto == config.ProtoUDP {
		return c.set.UDP
	}
	return c.set.TCP
}

// Connect creates a socket and connects it to the remote host. UDP
// sockets are bound to an ephemeral local port instead, since datagrams
// name their destination on every send. Errors of the platform are
// returned unchanged.
//
// Listeners added while the client is unbound stay in place, so register
// them before Connect to see data the peer sends right away. A failed
// Connect leaves the socket open; call Destroy to release it.
func (c *Client) Connect(ctx context.Context) error {
	info, err := c.sock().Create(c.props).Wait(ctx)
	if err != nil {
		return err
	}
	c.FromHandle(info.SocketID)

	if c.proto == config.ProtoUDP {
		_, err = c.set.UDP.Bind(info.SocketID, "0.0.0.0", 0).Wait(ctx)
	} else {
		_, err = c.set.TCP.Connect(info.SocketID, c.host, c.port).Wait(ctx)
	}
	if err != nil {
		return err
	}

	c.logger.VerboseMsg("client: %s bound to socket %d", c.URI(), info.SocketID)
	return nil
}

// FromHandle adopts an already open socket, typically one accepted by a
// server. A bound client is destroyed first, including its listeners.
// Listeners of an unbound client are kept and see the first data of the
// new socket. Receiving is resumed on the new socket.
func (c *Client) FromHandle(id socket.ID) {
	if c.Handle() != socket.None {
		c.Destroy()
	}

	c.mu.Lock()
	c.handle = id
	c.dec = codec.NewDecoder()
	c.mu.Unlock()

	c.sock().SetPaused(id, false)
}

// SendMessage encodes text and sends it. TCP writes to the connection,
// UDP addresses a datagram to the remote host and port.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	h := c.Handle()
	data := c.enc.Encode(text)

	var f *transport.Future[socket.SendInfo]
	if c.proto == config.ProtoUDP {
		f = c.set.UDP.Send(h, data, c.host, c.port)
	} else {
		f = c.set.TCP.Send(h, data)
	}

	_, err := f.Wait(ctx)
	return err
}

// AddResponseListener sets fn as the receiver of decoded data, replacing
// any previous one. Data of other sockets is ignored.
func (c *Client) AddResponseListener(fn func(string)) {
	handler := func(info socket.ReceiveInfo) {
		c.mu.Lock()
		if info.SocketID != c.handle || c.dec == nil {
			c.mu.Unlock()
			return
		}
		text := c.dec.Decode(info.Data)
		c.mu.Unlock()

		fn(text)
	}

	c.data.Replace(func() *event.Subscription {
		if c.proto == config.ProtoUDP {
			return c.set.UDP.OnReceive(handler)
		}
		return c.set.TCP.OnReceive(handler)
	})
}

// AddErrorListener sets fn as the receiver of receive errors, replacing
// any previous one. Errors of other sockets are ignored.
func (c *Client) AddErrorListener(fn func(netcode.Code)) {
	handler := func(info socket.ReceiveErrorInfo) {
		if info.SocketID != c.Handle() {
			return
		}
		fn(info.ResultCode)
	}

	c.errs.Replace(func() *event.Subscription {
		if c.proto == config.ProtoUDP {
			return c.set.UDP.OnReceiveError(handler)
		}
		return c.set.TCP.OnReceiveError(handler)
	})
}

// Disconnect closes a TCP connection. The socket stays open until
// Destroy. It does nothing for UDP.
func (c *Client) Disconnect() {
	c.disconnect(c.Handle())
}

func (c *Client) disconnect(h socket.ID) {
	if c.proto != config.ProtoTCP || h == socket.None {
		return
	}
	c.set.TCP.Disconnect(h)
}

// Destroy removes both listeners and releases the socket. It never fails
// and does nothing on an unbound client.
func (c *Client) Destroy() {
	c.mu.Lock()
	c.data.Clear()
	c.errs.Clear()
	h := c.handle
	c.handle = socket.None
	c.dec = nil
	c.mu.Unlock()

	if h == socket.None {
		return
	}

	c.disconnect(h)
	c.sock().Close(h)
	c.logger.VerboseMsg("client: %s released socket %d", c.URI(), h)
}

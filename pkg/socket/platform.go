// Package socket is a callback-driven socket platform on top of package net.
//
// It exposes three API groups, TCP, TCPServer and UDP, in the shape of a
// native asynchronous socket API: sockets are referenced by numeric IDs,
// every operation takes a trailing Callback that is invoked exactly once,
// and inbound traffic is announced through event signals (OnReceive,
// OnReceiveError, OnAccept, OnAcceptError).
//
// All events of a Platform are dispatched in order on a single event-loop
// goroutine. Operation callbacks are invoked on whichever goroutine finished
// the operation, never on the event loop, so a handler can wait for an
// operation's result without blocking event delivery forever.
package socket

import (
	"dominicbreuker/netterm/pkg/config"
	"dominicbreuker/netterm/pkg/log"
	"dominicbreuker/netterm/pkg/netcode"
	"fmt"
	"sync"
)

// ID identifies an open socket within a Platform.
type ID int

// None is the ID of no socket.
const None ID = 0

// Callback receives the result of one platform operation.
type Callback[T any] func(T, error)

// Empty is the result of operations that only report success or failure.
type Empty struct{}

// DefaultBufferSize is the read buffer of a socket created without one.
const DefaultBufferSize = 4096

// Properties are the optional creation parameters of a socket.
type Properties struct {
	Name       string
	BufferSize int
}

// CreateInfo is the result of a Create call.
type CreateInfo struct {
	SocketID ID
}

// SendInfo is the result of a Send call.
type SendInfo struct {
	ResultCode netcode.Code
	BytesSent  int
}

// ReceiveInfo is the payload of OnReceive. Remote fields are only set for UDP.
type ReceiveInfo struct {
	SocketID      ID
	Data          []byte
	RemoteAddress string
	RemotePort    int
}

// ReceiveErrorInfo is the payload of OnReceiveError.
type ReceiveErrorInfo struct {
	SocketID   ID
	ResultCode netcode.Code
}

// AcceptInfo is the payload of OnAccept.
type AcceptInfo struct {
	SocketID       ID
	ClientSocketID ID
}

// AcceptErrorInfo is the payload of OnAcceptError.
type AcceptErrorInfo struct {
	SocketID   ID
	ResultCode netcode.Code
}

// Error is the failure of a platform operation.
type Error struct {
	Op   string
	Code netcode.Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, netcode.Describe(e.Code))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ResultCode lets netcode.FromError classify platform errors.
func (e *Error) ResultCode() netcode.Code {
	return e.Code
}

func opError(op string, err error) *Error {
	return &Error{Op: op, Code: netcode.FromError(err), Err: err}
}

func codeError(op string, code netcode.Code) *Error {
	return &Error{Op: op, Code: code}
}

// Platform owns the socket tables and the event loop.
type Platform struct {
	TCP       *TCP
	TCPServer *TCPServer
	UDP       *UDP

	deps   *config.Dependencies
	logger *log.Logger

	events   chan func()
	done     chan struct{}
	shutdown sync.Once

	mu     sync.Mutex
	nextID ID
}

// New creates a platform and starts its event loop. deps and logger may be nil.
func New(deps *config.Dependencies, logger *log.Logger) *Platform {
	p := &Platform{
		deps:   deps,
		logger: logger,
		events: make(chan func(), 256),
		done:   make(chan struct{}),
	}
	p.TCP = &TCP{p: p, sockets: make(map[ID]*tcpSocket)}
	p.TCPServer = &TCPServer{p: p, sockets: make(map[ID]*serverSocket)}
	p.UDP = &UDP{p: p, sockets: make(map[ID]*udpSocket)}

	go p.loop()
	return p
}

// Shutdown closes every socket and stops the event loop. Events that were
// not delivered yet are dropped.
func (p *Platform) Shutdown() {
	p.shutdown.Do(func() {
		p.TCPServer.closeAll()
		p.TCP.closeAll()
		p.UDP.closeAll()
		close(p.done)
	})
}

func (p *Platform) loop() {
	for {
		select {
		case fn := <-p.events:
			p.run(fn)
		case <-p.done:
			return
		}
	}
}

func (p *Platform) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorMsg("event handler panic: %v\n", r)
		}
	}()
	fn()
}

// dispatch queues fn on the event loop. It blocks while the queue is full.
func (p *Platform) dispatch(fn func()) {
	select {
	case p.events <- fn:
	case <-p.done:
	}
}

// dispatchWait queues fn and returns once the event loop has run it.
func (p *Platform) dispatchWait(fn func()) {
	ran := make(chan struct{})
	p.dispatch(func() {
		defer close(ran)
		fn()
	})

	select {
	case <-ran:
	case <-p.done:
	}
}

func (p *Platform) newID() ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	return p.nextID
}

func bufferSize(props Properties) int {
	if props.BufferSize > 0 {
		return props.BufferSize
	}
	return DefaultBufferSize
}

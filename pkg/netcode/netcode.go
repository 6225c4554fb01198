// Package netcode defines the numeric result codes reported by socket error
// events and the lookup table that turns them into readable names.
//
// The numbering follows the Chromium net error list, which is what the
// socket API this tool models reports to its callers.
package netcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Code is a platform result code. Zero means success, failures are negative.
type Code int

// Known result codes.
const (
	OK                   Code = 0
	IOPending            Code = -1
	Failed               Code = -2
	Aborted              Code = -3
	InvalidArgument      Code = -4
	InvalidHandle        Code = -5
	FileNotFound         Code = -6
	TimedOut             Code = -7
	AccessDenied         Code = -10
	NotImplemented       Code = -11
	InsufficientResource Code = -12
	SocketNotConnected   Code = -15
	NetworkChanged       Code = -21
	SocketIsConnected    Code = -23
	ConnectionClosed     Code = -100
	ConnectionReset      Code = -101
	ConnectionRefused    Code = -102
	ConnectionAborted    Code = -103
	ConnectionFailed     Code = -104
	NameNotResolved      Code = -105
	InternetDisconnected Code = -106
	AddressInvalid       Code = -108
	AddressUnreachable   Code = -109
	ConnectionTimedOut   Code = -118
	NameResolutionFailed Code = -137
	NetworkAccessDenied  Code = -138
	MsgTooBig            Code = -142
	AddressInUse         Code = -147
)

var names = map[Code]string{
	OK:                   "OK",
	IOPending:            "IO_PENDING",
	Failed:               "FAILED",
	Aborted:              "ABORTED",
	InvalidArgument:      "INVALID_ARGUMENT",
	InvalidHandle:        "INVALID_HANDLE",
	FileNotFound:         "FILE_NOT_FOUND",
	TimedOut:             "TIMED_OUT",
	AccessDenied:         "ACCESS_DENIED",
	NotImplemented:       "NOT_IMPLEMENTED",
	InsufficientResource: "INSUFFICIENT_RESOURCES",
	SocketNotConnected:   "SOCKET_NOT_CONNECTED",
	NetworkChanged:       "NETWORK_CHANGED",
	SocketIsConnected:    "SOCKET_IS_CONNECTED",
	ConnectionClosed:     "CONNECTION_CLOSED",
	ConnectionReset:      "CONNECTION_RESET",
	ConnectionRefused:    "CONNECTION_REFUSED",
	ConnectionAborted:    "CONNECTION_ABORTED",
	ConnectionFailed:     "CONNECTION_FAILED",
	NameNotResolved:      "NAME_NOT_RESOLVED",
	InternetDisconnected: "INTERNET_DISCONNECTED",
	AddressInvalid:       "ADDRESS_INVALID",
	AddressUnreachable:   "ADDRESS_UNREACHABLE",
	ConnectionTimedOut:   "CONNECTION_TIMED_OUT",
	NameResolutionFailed: "NAME_RESOLUTION_FAILED",
	NetworkAccessDenied:  "NETWORK_ACCESS_DENIED",
	MsgTooBig:            "MSG_TOO_BIG",
	AddressInUse:         "ADDRESS_IN_USE",
}

// Name returns the table entry for c, or "UNKNOWN" for codes not in the table.
func Name(c Code) string {
	if n, ok := names[c]; ok {
		return n
	}
	return "UNKNOWN"
}

func (c Code) String() string {
	return Name(c)
}

// Describe renders c the way status lines show it: "error -101: CONNECTION_RESET".
func Describe(c Code) string {
	return fmt.Sprintf("error %d: %s", int(c), Name(c))
}

// errnoCodes is checked in order with errors.Is.
var errnoCodes = []struct {
	err  error
	code Code
}{
	{syscall.ECONNRESET, ConnectionReset},
	{syscall.EPIPE, ConnectionReset},
	{syscall.ECONNREFUSED, ConnectionRefused},
	{syscall.ECONNABORTED, ConnectionAborted},
	{syscall.ENETUNREACH, AddressUnreachable},
	{syscall.EHOSTUNREACH, AddressUnreachable},
	{syscall.EADDRINUSE, AddressInUse},
	{syscall.EADDRNOTAVAIL, AddressInvalid},
	{syscall.EACCES, AccessDenied},
	{syscall.EMSGSIZE, MsgTooBig},
	{syscall.ETIMEDOUT, ConnectionTimedOut},
}

// FromError classifies err into a result code. nil maps to OK and anything
// unrecognised to Failed.
func FromError(err error) Code {
	if err == nil {
		return OK
	}

	switch {
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrClosedPipe):
		return ConnectionClosed
	case errors.Is(err, net.ErrClosed):
		return SocketNotConnected
	case errors.Is(err, context.Canceled):
		return Aborted
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		return TimedOut
	}

	var coded interface{ ResultCode() Code }
	if errors.As(err, &coded) {
		return coded.ResultCode()
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NameNotResolved
	}

	for _, ec := range errnoCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimedOut
	}

	return Failed
}

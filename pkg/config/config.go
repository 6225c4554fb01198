// Package config holds the settings of a netterm session and the
// injectable dependencies used to reach the network and the terminal.
package config

import (
	"dominicbreuker/netterm/pkg/log"
	"errors"
	"fmt"
)

// Protocol is the transport of an endpoint.
type Protocol int

// Supported protocols. The zero value is invalid.
const (
	ProtoTCP Protocol = iota + 1
	ProtoUDP
)

// ErrUnsupportedProtocol is returned when a protocol name is neither tcp nor udp.
var ErrUnsupportedProtocol = errors.New("unsupported protocol")

func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoUDP:
		return "udp"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// Valid reports whether p is tcp or udp.
func (p Protocol) Valid() bool {
	return p == ProtoTCP || p == ProtoUDP
}

// ParseProtocol maps "tcp" and "udp" to their Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch s {
	case "tcp":
		return ProtoTCP, nil
	case "udp":
		return ProtoUDP, nil
	default:
		return 0, fmt.Errorf("%w '%s'", ErrUnsupportedProtocol, s)
	}
}

// Shared is the configuration of one connect or listen session.
type Shared struct {
	Protocol Protocol
	Host     string
	Port     int
	Listen   bool

	Verbose bool
	Raw     bool   // send every keystroke immediately
	Clear   bool   // clear the screen before the session starts
	LogFile string // transcript file, empty to disable

	Logger *log.Logger
	Deps   *Dependencies
}

// Validate returns every problem found in c.
func (c *Shared) Validate() []error {
	var errors []error

	if !c.Protocol.Valid() {
		errors = append(errors, fmt.Errorf("%w: %s", ErrUnsupportedProtocol, c.Protocol))
	}

	if err := validatePort(c.Port); err != nil {
		errors = append(errors, fmt.Errorf("port: %s", err))
	}

	if err := validateHost(c.Host, c.Listen); err != nil {
		errors = append(errors, fmt.Errorf("host: %s", err))
	}

	return errors
}

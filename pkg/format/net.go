// Package format renders addresses and endpoint URIs for display.
package format

import (
	"fmt"
	"strings"
)

// Addr joins host and port, bracketing IPv6 literals.
func Addr(host string, port int) string {
	if strings.ContainsAny(host, ":") { // IPv6
		return fmt.Sprintf("[%s]:%d", host, port)
	} else { // IPv4 or name
		return fmt.Sprintf("%s:%d", host, port)
	}
}

// URI returns the "{proto}://{host}:{port}" form shown to users.
// Hosts are not bracketed so the output matches what was typed in.
func URI(proto, host string, port int) string {
	return fmt.Sprintf("%s://%s:%d", proto, host, port)
}

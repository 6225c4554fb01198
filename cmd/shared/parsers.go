package shared

import (
	"dominicbreuker/netterm/pkg/config"
	"fmt"
	"regexp"
	"strconv"
)

var transportRe = regexp.MustCompile(`^(tcp|udp)://([^:]*):(\d+)$`)

// ParseTransport parses a transport string in the format "protocol://host:port"
// where protocol is tcp or udp. The host can be empty or "*" to bind to all
// interfaces. Returns the protocol, host, port, and any parsing error.
func ParseTransport(s string) (proto config.Protocol, host string, port int, err error) {
	matches := transportRe.FindStringSubmatch(s)
	if len(matches) != 4 {
		err = parsingError(s)
		return
	}

	proto, err = config.ParseProtocol(matches[1])
	if err != nil {
		err = parsingError(s)
		return
	}

	host = matches[2]
	if host == "*" { // also counts as all interfaces
		host = ""
	}

	port, err = strconv.Atoi(matches[3])
	if err != nil || port < 1 || port > 65535 {
		err = parsingError(s)
		return
	}

	return
}

func parsingError(s string) error {
	return fmt.Errorf("parsing %s: format should be 'protocol://host:port', where protocol = tcp|udp", s)
}

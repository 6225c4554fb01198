package socket

import (
	"net"
	"sort"
	"strconv"
)

// Info describes the state of a socket as reported by GetInfo.
type Info struct {
	SocketID     ID
	Name         string
	BufferSize   int
	Connected    bool
	Paused       bool
	LocalAddress string
	LocalPort    int
	PeerAddress  string
	PeerPort     int
}

// splitAddr returns the host and port of addr, or zero values for nil.
func splitAddr(addr net.Addr) (string, int) {
	switch a := addr.(type) {
	case nil:
		return "", 0
	case *net.TCPAddr:
		return a.IP.String(), a.Port
	case *net.UDPAddr:
		return a.IP.String(), a.Port
	}

	host, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String(), 0
	}
	port, _ := strconv.Atoi(portStr)
	return host, port
}

func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].SocketID < infos[j].SocketID })
}

package socket

import (
	"fmt"
	"net"
)

// NetworkInterface is one address of a local network interface.
type NetworkInterface struct {
	Name         string
	Address      string
	PrefixLength int
}

// GetNetworkList enumerates the addresses of all non-loopback interfaces that are up.
func (p *Platform) GetNetworkList(cb Callback[[]NetworkInterface]) {
	ifaces, err := net.Interfaces()
	if err != nil {
		cb(nil, opError("getNetworkList", fmt.Errorf("net.Interfaces(): %w", err)))
		return
	}

	var out []NetworkInterface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			p.logger.VerboseMsg("getNetworkList: %s: %s", iface.Name, err)
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ones, _ := ipNet.Mask.Size()
			out = append(out, NetworkInterface{
				Name:         iface.Name,
				Address:      ipNet.IP.String(),
				PrefixLength: ones,
			})
		}
	}

	cb(out, nil)
}

//go:build unix

package socket

import (
	"golang.org/x/sys/unix"
)

func setReuseAddr(fd uintptr) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
}

func setBroadcast(fd uintptr, enabled bool) error {
	return unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, boolToInt(enabled))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

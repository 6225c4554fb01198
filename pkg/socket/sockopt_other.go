//go:build !unix && !windows

package socket

func setReuseAddr(fd uintptr) error {
	return nil
}

func setBroadcast(fd uintptr, enabled bool) error {
	return nil
}

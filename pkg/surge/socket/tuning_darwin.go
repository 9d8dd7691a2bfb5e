//go:build darwin

package socket

import "golang.org/x/sys/unix"

func setNoDelay(fd int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
}

func setRecvBuffer(fd int, n int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, n)
}

func setSendBuffer(fd int, n int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, n)
}

func setKeepAlive(fd int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
}

// applyPlatformOptions: Darwin has neither TCP_QUICKACK nor
// TCP_DEFER_ACCEPT; both knobs are silently no-ops here.
func applyPlatformOptions(fd int, cfg *Config) {}

// applyListenerOptions sets TCP_FASTOPEN (Darwin 10.11+).
func applyListenerOptions(fd int, cfg *Config) error {
	if cfg.FastOpen {
		return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_FASTOPEN, 1)
	}
	return nil
}

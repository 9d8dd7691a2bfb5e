// Package socket applies exchange-facing listener/connection tuning: the
// "socket provider" external collaborator named in spec.md §6 needs a real
// accepted connection with sane TCP options before an ExchangeDriver ever
// touches it.
//
// Grounded on shockwave/pkg/shockwave/socket/tuning.go, which applies the
// same set of options via raw syscall.SetsockoptInt numbers; that file's
// own comment ("In production, you'd use golang.org/x/sys/unix for proper
// TCPInfo access") is taken here rather than left as a comment — see
// DESIGN.md.
package socket

import (
	"net"
)

// Config mirrors the exchange tunables' socket-level counterpart: nothing
// here is an HTTP framing concern, but an ExchangeDriver wiring a real
// net.Conn needs somewhere to configure it.
type Config struct {
	NoDelay     bool
	RecvBuffer  int
	SendBuffer  int
	QuickAck    bool
	DeferAccept bool
	FastOpen    bool
	KeepAlive   bool
}

// DefaultConfig returns the recommended configuration for HTTP/1.1
// workloads: low-latency ACKs, Nagle disabled, keepalive on.
func DefaultConfig() *Config {
	return &Config{
		NoDelay:     true,
		RecvBuffer:  256 * 1024,
		SendBuffer:  256 * 1024,
		QuickAck:    true,
		DeferAccept: true,
		FastOpen:    true,
		KeepAlive:   true,
	}
}

// Apply tunes an accepted connection. Non-TCP connections are left
// untouched (no error).
func Apply(conn net.Conn, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return err
	}

	var lastErr error
	err = rawConn.Control(func(fd uintptr) {
		if cfg.NoDelay {
			if err := setNoDelay(int(fd)); err != nil {
				lastErr = err
				return
			}
		}
		if cfg.RecvBuffer > 0 {
			_ = setRecvBuffer(int(fd), cfg.RecvBuffer)
		}
		if cfg.SendBuffer > 0 {
			_ = setSendBuffer(int(fd), cfg.SendBuffer)
		}
		if cfg.KeepAlive {
			_ = setKeepAlive(int(fd))
		}
		applyPlatformOptions(int(fd), cfg)
	})
	if err != nil {
		return err
	}
	return lastErr
}

// ApplyListener applies options (TCP_DEFER_ACCEPT, TCP_FASTOPEN) that must
// be set on the listening socket before accepting connections.
func ApplyListener(listener net.Listener, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	tcpListener, ok := listener.(*net.TCPListener)
	if !ok {
		return nil
	}
	file, err := tcpListener.File()
	if err != nil {
		return err
	}
	defer file.Close()
	return applyListenerOptions(int(file.Fd()), cfg)
}

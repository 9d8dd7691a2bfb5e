//go:build !linux && !darwin

package socket

func setNoDelay(fd int) error          { return nil }
func setRecvBuffer(fd int, n int) error { return nil }
func setSendBuffer(fd int, n int) error { return nil }
func setKeepAlive(fd int) error        { return nil }

func applyPlatformOptions(fd int, cfg *Config) {}

func applyListenerOptions(fd int, cfg *Config) error { return nil }

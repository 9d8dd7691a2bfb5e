package socket

import (
	"net"
	"path/filepath"
	"testing"
)

func netPipe(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	return client, server
}

func newUnixListener(t *testing.T) net.Listener {
	t.Helper()
	sock := filepath.Join(t.TempDir(), "surge-test.sock")
	ln, err := net.Listen("unix", sock)
	if err != nil {
		t.Fatalf("net.Listen(unix) error: %v", err)
	}
	return ln
}

//go:build linux || darwin

package zergmgr

import (
	"net"
	"os"
	"syscall"
	"testing"
)

const statsIdleJSON = `{"pid": 4242, "uid": 1000, "version": "2.0.21", "workers": [{"id": 1, "pid": 4243, "status": "idle", "requests": 17}]}`

const statsPausedJSON = `{"pid": 4242, "uid": 1000, "version": "2.0.21", "workers": [{"id": 1, "pid": 4243, "status": "pause", "requests": 17}]}`

// serveStats listens on a unix socket at path and answers every connection
// with payload, the way a uwsgi stats server does: write everything, close.
// The listener is torn down when the test finishes.
func serveStats(t *testing.T, path, payload string) {
	t.Helper()

	ln, err := net.Listen("unix", path)
	if err != nil {
		t.Fatalf("listen on %s: %v", path, err)
	}
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			_, _ = conn.Write([]byte(payload))
			_ = conn.Close()
		}
	}()
}

// mkfifo creates a fifo at path and opens a non-blocking reader on it so
// control writes have somewhere to go. The returned file reads back what
// was written.
func mkfifo(t *testing.T, path string) *os.File {
	t.Helper()

	if err := syscall.Mkfifo(path, 0o644); err != nil {
		t.Fatalf("mkfifo %s: %v", path, err)
	}
	reader, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		t.Fatalf("open fifo reader: %v", err)
	}
	t.Cleanup(func() { _ = reader.Close() })
	return reader
}

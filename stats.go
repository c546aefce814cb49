package zergmgr

import (
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net"
	"syscall"
	"time"
)

// WorkerPaused is the status a uwsgi worker reports while paused
const WorkerPaused = "pause"

// Stats is the decoded snapshot read from a process's statistics socket
type Stats struct {
	// PID is the process id of the master
	PID int `json:"pid"`
	// UID is the uid the process runs as
	UID int `json:"uid"`
	// Version is the server version string
	Version string `json:"version"`
	// Workers describes every worker slot of the process
	Workers []WorkerStats `json:"workers"`

	// Raw holds the undecoded JSON blob the snapshot was parsed from
	Raw []byte `json:"-"`
}

// WorkerStats describes a single worker slot
type WorkerStats struct {
	// ID is the 1-based worker slot number
	ID int `json:"id"`
	// PID is the worker's process id
	PID int `json:"pid"`
	// Status is the worker's current status, e.g. "idle", "busy" or "pause"
	Status string `json:"status"`
	// Requests is the number of requests the worker has served
	Requests int `json:"requests"`
}

// Paused reports whether the process's first worker is paused
func (s *Stats) Paused() bool {
	return len(s.Workers) > 0 && s.Workers[0].Status == WorkerPaused
}

// isNotRunning reports whether a dial or read failure means no process is
// listening: the socket file is gone, nobody accepts on it, or the peer
// dropped the connection mid-read.
func isNotRunning(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}

// readStats connects to the statistics socket at path, drains it until the
// peer closes, and decodes the accumulated bytes as one JSON object.
func readStats(path string, dialTimeout, readTimeout time.Duration) (*Stats, error) {
	conn, err := net.DialTimeout("unix", path, dialTimeout)
	if err != nil {
		if isNotRunning(err) {
			return nil, &OpError{Op: OpStats, Path: path, Err: ErrNotRunning}
		}
		return nil, &OpError{Op: OpStats, Path: path, Err: err}
	}
	defer func() { _ = conn.Close() }()

	if readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	}

	data, err := io.ReadAll(conn)
	if err != nil {
		if isNotRunning(err) {
			return nil, &OpError{Op: OpStats, Path: path, Err: ErrNotRunning}
		}
		return nil, &OpError{Op: OpStats, Path: path, Err: err}
	}

	var st Stats
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, &OpError{Op: OpStats, Path: path, Err: err}
	}
	st.Raw = data
	return &st, nil
}

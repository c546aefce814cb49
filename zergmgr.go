package zergmgr

import (
	"time"
)

// Artifact names inside an overlord folder
const (
	// ConfigFileName is the shared ini file driving both process kinds
	ConfigFileName = "uwsgi.ini"

	// OverlordSection is the config section name of the overlord process
	OverlordSection = "overlord"

	// ZerglingSectionPrefix prefixes the config section of every zergling
	ZerglingSectionPrefix = "zergling-"

	// OverlordFIFOName is the overlord's control fifo file name
	OverlordFIFOName = "overlord.fifo"

	// OverlordLogName is the overlord's log file name
	OverlordLogName = "overlord.log"

	// OverlordStatsName is the overlord's statistics socket file name
	OverlordStatsName = "overlord.stats.sock"

	// ZergSocketName is the internal socket the overlord hands connections
	// off on and every zergling attaches to
	ZergSocketName = "zerg.socket"

	// PublicSocketName is the client-facing socket of the zerg pool
	PublicSocketName = "socket"
)

// Per-zergling artifact suffixes, appended to "zergling-<name>"
const (
	// FIFOSuffix is the control fifo suffix
	FIFOSuffix = ".fifo"

	// LogSuffix is the log file suffix
	LogSuffix = ".log"

	// StatsSuffix is the statistics socket suffix
	StatsSuffix = ".stats.sock"

	// StartupSuffix marks a process that has launched but is not yet
	// accepting connections
	StartupSuffix = ".startup"

	// RestartSuffix, appended to the control fifo path, marks a reload
	// handoff in progress
	RestartSuffix = ".restart"
)

// Defaults that can be overridden through Options
const (
	// DefaultUwsgiPath is the default path to the uwsgi binary
	DefaultUwsgiPath = "uwsgi"

	// DefaultWorkerPlugin is the default worker-runtime plugin written
	// into zergling sections
	DefaultWorkerPlugin = "python3"

	// DefaultDialTimeout is the default timeout for statistics socket
	// connections
	DefaultDialTimeout = 2 * time.Second

	// DefaultReadTimeout is the default timeout for draining a statistics
	// socket
	DefaultReadTimeout = 1 * time.Second

	// DefaultWatchDebounce is the default debounce time for folder watching
	DefaultWatchDebounce = 25 * time.Millisecond
)

// File modes
const (
	// DirMode is the default mode for created process folders
	DirMode = 0o755

	// FileMode is the default mode for generated config files
	FileMode = 0o644
)

// Operation represents a control operation type
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpQuit asks the process to shut down gracefully
	OpQuit
	// OpPause toggles the paused state of the process's workers
	OpPause
	// OpReload asks the master to spawn a fresh instance of this worker slot
	OpReload
	// OpStart represents a process launch
	OpStart
	// OpStats represents a statistics socket read
	OpStats
)

// Operation string constants
const (
	opUnknownStr = "unknown"
	opQuitStr    = "quit"
	opPauseStr   = "pause"
	opReloadStr  = "reload"
	opStartStr   = "start"
	opStatsStr   = "stats"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpQuit:
		return opQuitStr
	case OpPause:
		return opPauseStr
	case OpReload:
		return opReloadStr
	case OpStart:
		return opStartStr
	case OpStats:
		return opStatsStr
	default:
		return opUnknownStr
	}
}

// Byte returns the control byte written to the fifo for this operation.
// OpStart and OpStats have no control byte; they return 0.
func (op Operation) Byte() byte {
	switch op {
	case OpQuit:
		return 'q'
	case OpPause:
		return 'p'
	case OpReload:
		return '1'
	default:
		return 0
	}
}

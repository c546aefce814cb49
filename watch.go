package zergmgr

// WatchEvent represents an observed state change of a watched process.
// Stats is nil when the process stopped answering on its statistics
// socket; Err is set only for failures other than the process being down.
type WatchEvent struct {
	Stats *Stats
	Err   error
}

// WatchCleanupFunc stops a watch and releases its resources
type WatchCleanupFunc func() error

// Running is a Wait condition satisfied once the process answers on its
// statistics socket
func Running(st *Stats) bool { return st != nil }

// Stopped is a Wait condition satisfied once the process no longer
// answers on its statistics socket
func Stopped(st *Stats) bool { return st == nil }

// Paused is a Wait condition satisfied once the process reports its first
// worker paused
func Paused(st *Stats) bool { return st != nil && st.Paused() }

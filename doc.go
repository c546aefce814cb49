// Package zergmgr manages fleets of uwsgi servers running in zerg mode:
// a long-lived front-end process per pool, the overlord, accepting client
// connections, and worker processes, the zerglings, each serving one
// application and attachable, pausable and reloadable independently.
//
// The core types are Overlord and Zergling, handles over the filesystem
// artifacts used to control and observe the external processes:
//
//	o := zergmgr.NewOverlord("/srv/pools", "demo")
//	if err := o.RegenerateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := o.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	z := zergmgr.NewZergling(o, "1", "app.ini")
//	if err := z.RegenerateConfig(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := z.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Later: replace the running instance without dropping a request
//	err := z.Reload(ctx)
//
// A handle owns paths, not an OS process. Control commands are single
// bytes written to a named pipe; state is observed by reading a JSON
// snapshot from the process's statistics socket, and by marker files
// flagging the startup and reload windows. Directory existence plus
// live-socket probing is the only record of what is running; there is no
// separate process table to drift out of sync.
//
// # Manager for Bulk Operations
//
// The Manager type is a convenience for callers polling or stopping many
// processes at once, with bounded concurrency and per-operation
// timeouts. Single-process callers do not need it; everything it does
// can be expressed with the Overlord and Zergling methods directly.
//
// # Design Philosophy
//
// This library prioritizes:
//
//   - Direct communication with the control fifo and statistics socket
//   - Check-before-mutate precondition guards, so a refused transition
//     never leaves partial side effects
//   - Fire-and-forget control writes; effects are observed by polling,
//     or through Watch and Wait where blocking is wanted
//   - Explicit, typed errors for every expected condition
package zergmgr

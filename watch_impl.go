//go:build linux || darwin

package zergmgr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// artifactPaths returns the filesystem paths whose appearance or removal
// signals a state change for this process: the statistics socket, the
// control fifo, the restart marker and the startup marker.
func (p *proc) artifactPaths() []string {
	return []string{
		p.statsSocket,
		p.fifo,
		p.fifo + RestartSuffix,
		strings.TrimSuffix(p.fifo, FIFOSuffix) + StartupSuffix,
	}
}

// stateKey condenses the observable state of the process into a
// comparable string so unchanged probes are not re-emitted.
func (p *proc) stateKey(st *Stats) string {
	var b strings.Builder
	if st == nil {
		b.WriteString("down")
	} else {
		fmt.Fprintf(&b, "up:%d", st.PID)
		for _, w := range st.Workers {
			fmt.Fprintf(&b, ":%d=%s", w.ID, w.Status)
		}
	}
	fmt.Fprintf(&b, "|starting=%v|reloading=%v",
		fileExists(strings.TrimSuffix(p.fifo, FIFOSuffix)+StartupSuffix),
		fileExists(p.fifo+RestartSuffix))
	return b.String()
}

// Watch observes the process folder for changes to the process's own
// control-channel artifacts and emits a debounced probe of the
// statistics socket whenever one of them appears or disappears. The
// returned cleanup function must be called to stop the watch.
func (p *proc) Watch(ctx context.Context) (<-chan WatchEvent, WatchCleanupFunc, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, &OpError{Op: OpStats, Path: p.folder, Err: err}
	}

	if err := watcher.Add(p.folder); err != nil {
		_ = watcher.Close()
		return nil, nil, &OpError{Op: OpStats, Path: p.folder, Err: err}
	}

	ch := make(chan WatchEvent, 10)

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	own := make(map[string]struct{})
	for _, path := range p.artifactPaths() {
		own[path] = struct{}{}
	}

	var last string
	readAndSend := func() {
		if sctx.IsStopping() {
			return
		}

		st, err := p.ReadStats(ctx)
		if err != nil {
			if !errors.Is(err, ErrNotRunning) {
				select {
				case ch <- WatchEvent{Err: err}:
				case <-sctx.Stopping():
				}
				return
			}
			st = nil
		}

		key := p.stateKey(st)
		if key == last {
			return
		}
		last = key

		select {
		case ch <- WatchEvent{Stats: st}:
		case <-sctx.Stopping():
		}
	}

	// Initial probe
	readAndSend()

	sctx.Go(func(sctx *stopper.Context) error {
		debounce := time.NewTimer(time.Hour)
		if !debounce.Stop() {
			<-debounce.C
		}
		defer debounce.Stop()

		for {
			select {
			case <-sctx.Stopping():
				return nil

			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if _, mine := own[ev.Name]; !mine {
					continue
				}
				debounce.Reset(DefaultWatchDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				select {
				case ch <- WatchEvent{Err: &OpError{Op: OpStats, Path: p.folder, Err: err}}:
				case <-sctx.Stopping():
					return nil
				}

			case <-debounce.C:
				readAndSend()
			}
		}
	})

	return ch, cleanup, nil
}

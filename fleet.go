package zergmgr

import (
	"context"
	"sync"
	"time"
)

// Process is the control surface shared by Overlord and Zergling. The
// Manager operates on it; single-process callers can use the concrete
// types directly.
type Process interface {
	// String identifies the process in results and error messages
	String() string
	// ReadStats reads the process's statistics snapshot
	ReadStats(ctx context.Context) (*Stats, error)
	// IsRunning reports whether the process answers on its statistics socket
	IsRunning(ctx context.Context) bool
	// Stop asks the process to quit gracefully
	Stop(ctx context.Context) error
}

// Manager handles operations on multiple processes concurrently. It is a
// convenience for callers polling or shutting down a whole fleet; the
// per-process operations stay fully usable without it.
type Manager struct {
	// Concurrency is the maximum number of concurrent operations
	Concurrency int
	// Timeout is the per-operation timeout
	Timeout time.Duration
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithConcurrency sets the maximum number of concurrent operations
func WithConcurrency(n int) ManagerOption {
	return func(m *Manager) {
		m.Concurrency = n
	}
}

// WithTimeout sets the per-operation timeout
func WithTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		m.Timeout = d
	}
}

// NewManager creates a new Manager with default settings
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		Concurrency: 10,
		Timeout:     5 * time.Second,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.Concurrency < 1 {
		m.Concurrency = 1
	}

	return m
}

func (m *Manager) execute(ctx context.Context, procs []Process, op func(context.Context, Process) error) error {
	if len(procs) == 0 {
		return nil
	}

	sem := make(chan struct{}, m.Concurrency)

	var wg sync.WaitGroup
	var mu sync.Mutex
	merr := &MultiError{}

	for _, p := range procs {
		wg.Add(1)
		go func(p Process) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				mu.Lock()
				merr.Add(ctx.Err())
				mu.Unlock()
				return
			}

			opCtx := ctx
			if m.Timeout > 0 {
				var cancel context.CancelFunc
				opCtx, cancel = context.WithTimeout(ctx, m.Timeout)
				defer cancel()
			}

			if err := op(opCtx, p); err != nil {
				mu.Lock()
				merr.Add(err)
				mu.Unlock()
			}
		}(p)
	}

	wg.Wait()

	return merr.Err()
}

// StopAll asks every given process to quit gracefully
func (m *Manager) StopAll(ctx context.Context, procs ...Process) error {
	return m.execute(ctx, procs, func(ctx context.Context, p Process) error {
		return p.Stop(ctx)
	})
}

// ReadStats collects the statistics snapshot of every given process,
// keyed by the process's String identity. Processes that fail to answer
// contribute an error to the returned MultiError while the rest of the
// results stay usable.
func (m *Manager) ReadStats(ctx context.Context, procs ...Process) (map[string]*Stats, error) {
	results := make(map[string]*Stats)
	if len(procs) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	err := m.execute(ctx, procs, func(ctx context.Context, p Process) error {
		st, err := p.ReadStats(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		results[p.String()] = st
		mu.Unlock()
		return nil
	})

	return results, err
}

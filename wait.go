//go:build linux || darwin

package zergmgr

import (
	"context"
	"errors"
)

// Wait blocks until a state probe satisfies cond or the context ends.
// The probe passed to cond is nil while the process is down. Wait is the
// blocking complement to the point-in-time checks: the lifecycle
// operations themselves never wait for their effect.
func (p *proc) Wait(ctx context.Context, cond func(*Stats) bool) (*Stats, error) {
	st, err := p.ReadStats(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotRunning) {
			return nil, err
		}
		st = nil
	}
	if cond(st) {
		return st, nil
	}

	events, cleanup, err := p.Watch(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cleanup() }()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil, ctx.Err()
			}
			if ev.Err != nil {
				return nil, ev.Err
			}
			if cond(ev.Stats) {
				return ev.Stats, nil
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

//go:build !linux && !darwin

package zergmgr

import (
	"context"
	"errors"
)

// Watch is not supported on this platform
func (p *proc) Watch(_ context.Context) (<-chan WatchEvent, WatchCleanupFunc, error) {
	return nil, nil, errors.New("zergmgr: watch not supported on this platform")
}

// Wait is not supported on this platform
func (p *proc) Wait(_ context.Context, _ func(*Stats) bool) (*Stats, error) {
	return nil, errors.New("zergmgr: wait not supported on this platform")
}

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	zergmgr "github.com/axondata/go-zergmgr"
)

// parseAlias splits "overlord/zergling" into its halves. The zergling
// half is empty when the alias names only an overlord.
func parseAlias(alias string) (overlord, zergling string) {
	overlord, zergling, _ = strings.Cut(alias, "/")
	return overlord, zergling
}

// lookupZergling resolves an <overlord>/<zergling> alias against the
// managed root
func lookupZergling(root, alias string) (*zergmgr.Zergling, error) {
	oname, zname := parseAlias(alias)
	if zname == "" {
		return nil, fmt.Errorf("expected <overlord>/<zergling>, got %q", alias)
	}
	return zergmgr.NewOverlord(root, oname).Zergling(zname)
}

// nextZerglingName picks a free numeric name: one past the highest
// numeric name in use, and at least one past the zergling count.
// Non-numeric names are ignored.
func nextZerglingName(zerglings []*zergmgr.Zergling) string {
	highest := len(zerglings)
	for _, z := range zerglings {
		if n, err := strconv.Atoi(z.Name()); err == nil && n > highest {
			highest = n
		}
	}
	return strconv.Itoa(highest + 1)
}

// zerglingState assembles the parenthetical state markers shown by the
// status command. A zergling that is plainly running yields none.
func zerglingState(ctx context.Context, z *zergmgr.Zergling) []string {
	var state []string
	if z.IsReloading() {
		state = append(state, "reloading")
	}
	paused, err := z.IsPaused(ctx)
	if err != nil {
		if z.IsStarting() {
			state = append(state, "starting")
		} else {
			state = append(state, "stopped")
		}
		return state
	}
	if paused {
		state = append(state, "paused")
	}
	return state
}

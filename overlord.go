package zergmgr

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var zerglingSectionRE = regexp.MustCompile(`^zergling-(.*)$`)

// Overlord is the front-end process of one zerg pool. It accepts client
// connections on the pool's public socket and distributes them to
// whatever zerglings are attached to the zerg socket.
type Overlord struct {
	proc

	root string
}

// NewOverlord creates a handle for the overlord of the named pool under
// the managed root directory. No filesystem state is touched until a
// lifecycle operation runs.
func NewOverlord(root, name string, opts ...Option) *Overlord {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	folder := filepath.Join(root, name)
	o := &Overlord{root: root}
	o.proc = proc{
		cfg:         cfg,
		name:        name,
		folder:      folder,
		fifo:        filepath.Join(folder, OverlordFIFOName),
		logFile:     filepath.Join(folder, OverlordLogName),
		statsSocket: filepath.Join(folder, OverlordStatsName),
		configPath:  filepath.Join(folder, ConfigFileName),
		cmdline:     []string{cfg.uwsgiPath, "--ini", name + "/" + ConfigFileName + ":" + OverlordSection},
	}
	return o
}

// String returns the overlord's name
func (o *Overlord) String() string {
	return o.name
}

// Root returns the managed root directory the overlord lives under
func (o *Overlord) Root() string {
	return o.root
}

// ZergSocketPath returns the path of the internal handoff socket
func (o *Overlord) ZergSocketPath() string {
	return filepath.Join(o.folder, ZergSocketName)
}

// PublicSocketPath returns the path of the client-facing socket
func (o *Overlord) PublicSocketPath() string {
	return filepath.Join(o.folder, PublicSocketName)
}

// RegenerateConfig writes a fresh config file containing only the
// overlord section. Prior values are not merged; spawning an overlord
// starts the pool's config from scratch.
func (o *Overlord) RegenerateConfig() error {
	doc := NewDocument()
	doc.SetSection(OverlordSection,
		Pair{"master", FlagValue},
		Pair{"daemonize", o.logFile},
		Pair{"stats-server", o.statsSocket},
		Pair{"plugin", "zergpool"},
		Pair{"logdate", FlagValue},
		Pair{"zerg-pool", o.ZergSocketPath() + ":" + o.PublicSocketPath()},
		Pair{"master-fifo", o.fifo},
	)

	if err := os.MkdirAll(o.folder, DirMode); err != nil {
		return &OpError{Op: OpStart, Path: o.folder, Err: err}
	}
	return doc.WriteFile(o.configPath)
}

// Zerglings returns a handle for every zergling section in the overlord's
// config file, in document order. A missing config file yields an empty
// list.
func (o *Overlord) Zerglings() ([]*Zergling, error) {
	doc, err := LoadDocument(o.configPath)
	if err != nil {
		return nil, err
	}

	var zerglings []*Zergling
	for _, sec := range doc.Sections() {
		m := zerglingSectionRE.FindStringSubmatch(sec.Name)
		if m == nil {
			continue
		}
		appConfig, _ := sec.Get("ini-paste")
		zerglings = append(zerglings, NewZergling(o, m[1], appConfig))
	}
	return zerglings, nil
}

// Zergling looks up a single zergling by name. Failing with
// ErrNoSuchZergling means no section for that name exists.
func (o *Overlord) Zergling(name string) (*Zergling, error) {
	zerglings, err := o.Zerglings()
	if err != nil {
		return nil, err
	}
	for _, z := range zerglings {
		if z.Name() == name {
			return z, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrNoSuchZergling, o.name, name)
}

// Instances discovers the live fleet under the managed root: every
// subdirectory is a candidate overlord, and only those answering on their
// statistics socket are returned. Directory existence plus live-socket
// probing is the source of truth; no separate process table is kept.
func Instances(ctx context.Context, root string, opts ...Option) ([]*Overlord, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var overlords []*Overlord
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		o := NewOverlord(root, entry.Name(), opts...)
		if o.IsRunning(ctx) {
			overlords = append(overlords, o)
		}
	}
	return overlords, nil
}

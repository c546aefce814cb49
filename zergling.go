package zergmgr

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// startPausedPlugin, when present in a zergling section, makes the fresh
// instance come up with its workers already paused.
const startPausedPlugin = "startpaused"

// Zergling is a single worker process serving one application. It
// attaches to its overlord's zerg socket and can be paused, resumed and
// reloaded with zero downtime.
type Zergling struct {
	proc

	overlord    *Overlord
	appConfig   string
	startupFile string
	restartFIFO string
}

// NewZergling creates a handle for the named zergling of an overlord.
// appConfig is the path of the application's own ini file, recorded in
// the generated section as ini-paste. The zergling inherits the
// overlord's Options; explicit opts override them.
func NewZergling(overlord *Overlord, name, appConfig string, opts ...Option) *Zergling {
	cfg := overlord.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	folder := overlord.folder
	base := ZerglingSectionPrefix + name
	fifo := filepath.Join(folder, base+FIFOSuffix)

	z := &Zergling{
		overlord:    overlord,
		appConfig:   appConfig,
		startupFile: filepath.Join(folder, base+StartupSuffix),
		restartFIFO: fifo + RestartSuffix,
	}
	z.proc = proc{
		cfg:         cfg,
		name:        name,
		folder:      folder,
		fifo:        fifo,
		logFile:     filepath.Join(folder, base+LogSuffix),
		statsSocket: filepath.Join(folder, base+StatsSuffix),
		configPath:  overlord.configPath,
		cmdline:     []string{cfg.uwsgiPath, "--ini", overlord.name + "/" + ConfigFileName + ":" + base},
	}
	return z
}

// String returns "<overlord>/zergling-<name>"
func (z *Zergling) String() string {
	return z.overlord.name + "/" + z.SectionName()
}

// Overlord returns the owning overlord handle
func (z *Zergling) Overlord() *Overlord {
	return z.overlord
}

// AppConfigPath returns the application config path served by this zergling
func (z *Zergling) AppConfigPath() string {
	return z.appConfig
}

// SectionName returns the zergling's section name within the overlord's
// config file
func (z *Zergling) SectionName() string {
	return ZerglingSectionPrefix + z.name
}

// StartupFilePath returns the path of the startup marker file
func (z *Zergling) StartupFilePath() string {
	return z.startupFile
}

// RestartFIFOPath returns the path of the restart-handoff fifo
func (z *Zergling) RestartFIFOPath() string {
	return z.restartFIFO
}

type regenConfig struct {
	startPaused bool
	virtualenv  string
}

// RegenOption configures RegenerateConfig
type RegenOption func(*regenConfig)

// WithStartPaused makes the generated section pause the instance
// immediately on startup
func WithStartPaused() RegenOption {
	return func(c *regenConfig) {
		c.startPaused = true
	}
}

// WithVirtualenv records a virtualenv path in the generated section
func WithVirtualenv(path string) RegenOption {
	return func(c *regenConfig) {
		c.virtualenv = path
	}
}

// RegenerateConfig replaces the zergling's section in the overlord's
// config file wholesale. Besides the socket, log and fifo wiring, the
// section carries the hooks maintaining the marker-file lifecycle: the
// startup marker is written on launch, removed on the first accepted
// connection, and both the restart fifo and the startup marker are
// cleared when the process exits.
func (z *Zergling) RegenerateConfig(opts ...RegenOption) error {
	var rc regenConfig
	for _, opt := range opts {
		opt(&rc)
	}

	doc, err := LoadDocument(z.configPath)
	if err != nil {
		return err
	}

	doc.DeleteSection(z.SectionName())
	sec := doc.EnsureSection(z.SectionName())
	if rc.virtualenv != "" {
		sec.Append("virtualenv", rc.virtualenv)
	}
	sec.Append("zerg", z.overlord.ZergSocketPath())
	sec.Append("daemonize", z.logFile)
	sec.AppendFlag("logdate")
	sec.Append("stats-server", z.statsSocket)
	sec.Append("master-fifo", z.fifo)
	sec.Append("master-fifo", z.restartFIFO)
	if rc.startPaused {
		sec.Append("plugin", startPausedPlugin)
	}
	sec.Append("plugin", z.cfg.workerPlugin)
	sec.Append("ini-paste", z.appConfig)
	sec.Append("hook-asap", "write:"+z.startupFile+" true")
	sec.Append("hook-accepting1-once", "unlink:"+z.startupFile)
	sec.Append("hook-as-user-atexit", "unlink:"+z.restartFIFO)
	sec.Append("hook-as-user-atexit", "unlink:"+z.startupFile)

	if err := os.MkdirAll(z.folder, DirMode); err != nil {
		return &OpError{Op: OpStart, Path: z.folder, Err: err}
	}
	return doc.WriteFile(z.configPath)
}

// IsPaused reports whether the running instance's workers are paused.
// Failing with ErrNotRunning means the instance is not up at all; the
// error is propagated, not swallowed.
func (z *Zergling) IsPaused(ctx context.Context) (bool, error) {
	st, err := z.ReadStats(ctx)
	if err != nil {
		return false, err
	}
	return st.Paused(), nil
}

// IsStarting reports whether the startup marker exists: the instance has
// launched but is not yet accepting connections
func (z *Zergling) IsStarting() bool {
	return fileExists(z.startupFile)
}

// IsReloading reports whether the restart marker exists: a reload handoff
// is in progress
func (z *Zergling) IsReloading() bool {
	return fileExists(z.restartFIFO)
}

// Pause suspends the instance's workers. Failing with ErrAlreadyPaused
// means the instance was paused already; nothing is written in that case.
func (z *Zergling) Pause(ctx context.Context) error {
	paused, err := z.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return &OpError{Op: OpPause, Path: z.fifo, Err: ErrAlreadyPaused}
	}
	return z.send(OpPause)
}

// Resume unpauses the instance's workers. Failing with ErrAlreadyRunning
// means the instance was not paused. The control byte is the same as for
// Pause; it toggles.
func (z *Zergling) Resume(ctx context.Context) error {
	paused, err := z.IsPaused(ctx)
	if err != nil {
		return err
	}
	if !paused {
		return &OpError{Op: OpPause, Path: z.fifo, Err: ErrAlreadyRunning}
	}
	return z.send(OpPause)
}

// Start launches the zergling. Failing with ErrAlreadyRunning means the
// startup window of a previous launch is still open.
func (z *Zergling) Start(ctx context.Context, opts ...StartOption) error {
	if z.IsStarting() {
		return &OpError{Op: OpStart, Path: z.startupFile, Err: ErrAlreadyRunning}
	}
	return z.proc.Start(ctx, opts...)
}

// Reload replaces the running instance with a fresh one without dropping
// requests. The reload byte asks the master to spawn a sibling on the
// shared zerg socket; the section is rewritten so the new instance keeps
// the current pause intent and, once it accepts its first connection,
// quits the old instance through the restart fifo. Both instances accept
// traffic during the handoff window.
func (z *Zergling) Reload(ctx context.Context, opts ...StartOption) error {
	if z.IsReloading() {
		return &OpError{Op: OpReload, Path: z.restartFIFO, Err: ErrAlreadyReloading}
	}

	if err := z.send(OpReload); err != nil {
		return err
	}

	startPaused, err := z.IsPaused(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotRunning) {
			return err
		}
		startPaused = false
	}

	doc, err := LoadDocument(z.configPath)
	if err != nil {
		return err
	}
	sec := doc.EnsureSection(z.SectionName())
	normalizeStartPaused(sec, startPaused)

	handoff := "writefifo:" + z.restartFIFO + " q"
	if !containsString(sec.GetAll("hook-accepting1-once"), handoff) {
		sec.Append("hook-accepting1-once", handoff)
	}

	if err := doc.WriteFile(z.configPath); err != nil {
		return err
	}

	args := append([]StartOption{StartQuiet(), SkipRunningCheck()}, opts...)
	return z.Start(ctx, args...)
}

// Delete removes the zergling's section from the overlord's config file
// and cleans up its control-channel artifacts. Deleting an absent
// zergling is a no-op; missing artifact files are ignored.
func (z *Zergling) Delete() error {
	if !fileExists(z.configPath) {
		return nil
	}

	doc, err := LoadDocument(z.configPath)
	if err != nil {
		return err
	}
	if !doc.Has(z.SectionName()) {
		return nil
	}
	doc.DeleteSection(z.SectionName())
	if err := doc.WriteFile(z.configPath); err != nil {
		return err
	}

	for _, path := range []string{z.statsSocket, z.startupFile, z.fifo, z.restartFIFO} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// normalizeStartPaused rewrites the section's plugin entries so the
// startpaused plugin is present iff want is set, preserving the relative
// order of every other plugin entry.
func normalizeStartPaused(sec *Section, want bool) {
	plugins := sec.GetAll("plugin")
	found := false
	kept := make([]string, 0, len(plugins))
	for _, plugin := range plugins {
		if plugin == startPausedPlugin {
			found = true
			continue
		}
		kept = append(kept, plugin)
	}

	switch {
	case found && !want:
		sec.Reset("plugin")
		for _, plugin := range kept {
			sec.Append("plugin", plugin)
		}
	case !found && want:
		sec.Append("plugin", startPausedPlugin)
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

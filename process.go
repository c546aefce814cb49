package zergmgr

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/axondata/go-zergmgr/internal/unix"
)

// config carries the tunables shared by Overlord and Zergling. A zergling
// inherits its overlord's config at construction; Options applied to the
// zergling override the inherited values.
type config struct {
	uwsgiPath    string
	workerPlugin string
	dialTimeout  time.Duration
	readTimeout  time.Duration
}

func defaultConfig() config {
	return config{
		uwsgiPath:    DefaultUwsgiPath,
		workerPlugin: DefaultWorkerPlugin,
		dialTimeout:  DefaultDialTimeout,
		readTimeout:  DefaultReadTimeout,
	}
}

// Option configures an Overlord or Zergling
type Option func(*config)

// WithUwsgiPath sets the path to the uwsgi binary
func WithUwsgiPath(path string) Option {
	return func(c *config) {
		c.uwsgiPath = path
	}
}

// WithWorkerPlugin sets the versioned worker-runtime plugin written into
// generated zergling sections
func WithWorkerPlugin(name string) Option {
	return func(c *config) {
		c.workerPlugin = name
	}
}

// WithDialTimeout sets the timeout for statistics socket connections
func WithDialTimeout(d time.Duration) Option {
	return func(c *config) {
		c.dialTimeout = d
	}
}

// WithReadTimeout sets the timeout for draining a statistics socket
func WithReadTimeout(d time.Duration) Option {
	return func(c *config) {
		c.readTimeout = d
	}
}

// proc holds the control-channel paths shared by both process kinds. It
// does not own the OS process, only the paths used to control and observe
// whatever process currently occupies them, so a restart under reload
// never invalidates an in-memory handle.
type proc struct {
	cfg config

	name        string
	folder      string
	fifo        string
	logFile     string
	statsSocket string
	configPath  string
	cmdline     []string
}

// Name returns the process name
func (p *proc) Name() string { return p.name }

// Folder returns the process folder
func (p *proc) Folder() string { return p.folder }

// FIFOPath returns the path of the control fifo
func (p *proc) FIFOPath() string { return p.fifo }

// LogPath returns the path of the log file
func (p *proc) LogPath() string { return p.logFile }

// StatsSocketPath returns the path of the statistics socket
func (p *proc) StatsSocketPath() string { return p.statsSocket }

// ConfigPath returns the path of the config file driving this process
func (p *proc) ConfigPath() string { return p.configPath }

// Cmdline returns the command line used to launch the process
func (p *proc) Cmdline() []string {
	return append([]string(nil), p.cmdline...)
}

// send writes a single control byte to the process fifo. The write is
// fire-and-forget: no acknowledgment comes back, the effect is observed
// later through the statistics socket or marker files. The fifo is opened
// non-blocking so a vanished reader surfaces as an error instead of a
// hang.
func (p *proc) send(op Operation) error {
	f, err := os.OpenFile(p.fifo, os.O_WRONLY|unix.ONonblock, 0)
	if err != nil {
		return &OpError{Op: op, Path: p.fifo, Err: err}
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write([]byte{op.Byte()}); err != nil {
		return &OpError{Op: op, Path: p.fifo, Err: err}
	}
	return nil
}

// ReadStats reads and parses the process's statistics socket. Failing with
// ErrNotRunning means no process is listening there.
func (p *proc) ReadStats(_ context.Context) (*Stats, error) {
	return readStats(p.statsSocket, p.cfg.dialTimeout, p.cfg.readTimeout)
}

// IsRunning reports whether a process is answering on the statistics socket
func (p *proc) IsRunning(ctx context.Context) bool {
	_, err := p.ReadStats(ctx)
	return err == nil
}

// PID returns the process id from the statistics snapshot, or false if no
// process is running
func (p *proc) PID(ctx context.Context) (int, bool) {
	st, err := p.ReadStats(ctx)
	if err != nil {
		return 0, false
	}
	return st.PID, true
}

type startConfig struct {
	quiet        bool
	checkRunning bool
}

// StartOption configures a Start call
type StartOption func(*startConfig)

// StartQuiet discards the launched process's stdout and captures stderr
// for error reporting instead of inheriting the caller's terminal
func StartQuiet() StartOption {
	return func(c *startConfig) {
		c.quiet = true
	}
}

// SkipRunningCheck launches even when a process already answers on the
// statistics socket. Reload relies on this: old and new instance coexist
// during the handoff.
func SkipRunningCheck() StartOption {
	return func(c *startConfig) {
		c.checkRunning = false
	}
}

// Start launches the external process. It blocks until the launch phase
// exits; the server daemonizes itself, so this returns quickly. A
// non-zero launch exit fails with a LaunchError carrying captured stderr.
func (p *proc) Start(ctx context.Context, opts ...StartOption) error {
	cfg := startConfig{checkRunning: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkRunning && p.IsRunning(ctx) {
		return &OpError{Op: OpStart, Path: p.statsSocket, Err: ErrAlreadyRunning}
	}

	if err := os.MkdirAll(p.folder, DirMode); err != nil {
		return &OpError{Op: OpStart, Path: p.folder, Err: err}
	}

	cmd := exec.CommandContext(ctx, p.cmdline[0], p.cmdline[1:]...)
	cmd.Dir = filepath.Dir(p.folder)

	var stderr bytes.Buffer
	if cfg.quiet {
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	if err := cmd.Run(); err != nil {
		return &LaunchError{
			Cmd:    p.Cmdline(),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return nil
}

// Stop asks the process to quit gracefully. The quit byte is written
// asynchronously; Stop does not wait for the process to exit.
func (p *proc) Stop(ctx context.Context) error {
	if !p.IsRunning(ctx) {
		return &OpError{Op: OpQuit, Path: p.statsSocket, Err: ErrNotRunning}
	}
	return p.send(OpQuit)
}

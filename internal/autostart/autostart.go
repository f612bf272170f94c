// Package autostart registers the application to launch at user login.
// One Manager contract is implemented per OS store: the per-user Run key on
// Windows, an XDG autostart desktop entry on Linux and a launch agent on
// macOS. The backend is picked once, at construction, from the host OS.
package autostart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnsupported marks operations on an OS without an autostart backend.
var ErrUnsupported = errors.New("autostart not supported on this platform")

// ErrInvalidName is returned for app names that cannot be used as a file name
// or registry value name.
var ErrInvalidName = errors.New("invalid application name")

// DefaultCommandTimeout bounds launchctl invocations.
const DefaultCommandTimeout = 10 * time.Second

// Manager enables, disables and queries the login registration.
// No method panics or returns a raw platform error: IsEnabled degrades to
// false and Enable/Disable report failures through Result.
type Manager interface {
	// IsEnabled reports whether a registration exists and points at the
	// current executable. Read errors count as "not enabled".
	IsEnabled() bool

	// Enable creates or overwrites the registration.
	Enable() Result

	// Disable removes the registration. A missing registration is success.
	Disable() Result

	// Backend names the OS store in use (windows, linux, darwin, unsupported).
	Backend() string

	// Location describes where the registration lives.
	Location() string
}

// Result is the outcome of Enable or Disable.
type Result struct {
	Err error
}

// OK reports success.
func (r Result) OK() bool { return r.Err == nil }

// Unsupported reports whether the failure is due to the platform rather than
// an I/O problem.
func (r Result) Unsupported() bool { return errors.Is(r.Err, ErrUnsupported) }

// StoreError is an autostart store failure.
type StoreError struct {
	Op       string
	Location string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("autostart %s %s: %v", e.Op, e.Location, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// commandRunner executes an external command, returning an error that
// includes its output on failure.
type commandRunner func(ctx context.Context, name string, args ...string) error

func execRunner(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("running %s %s: %w: %s", name, strings.Join(args, " "), err, msg)
		}
		return fmt.Errorf("running %s %s: %w", name, strings.Join(args, " "), err)
	}
	return nil
}

type options struct {
	goos           string
	execPath       string
	homeDir        string
	commandTimeout time.Duration
	runner         commandRunner
	runKey         func() (runKeyStore, error)
}

// Option customizes New.
type Option func(*options)

// WithGOOS overrides the detected operating system.
func WithGOOS(goos string) Option {
	return func(o *options) { o.goos = goos }
}

// WithExecutable registers path instead of the running executable.
func WithExecutable(path string) Option {
	return func(o *options) { o.execPath = path }
}

// WithHomeDir overrides the user's home directory.
func WithHomeDir(dir string) Option {
	return func(o *options) { o.homeDir = dir }
}

// WithCommandTimeout bounds each external command (launchctl).
func WithCommandTimeout(d time.Duration) Option {
	return func(o *options) { o.commandTimeout = d }
}

// New creates the Manager for appName on the current OS. The executable path
// is resolved once here and fixed for the Manager's lifetime. Construction
// never fails: problems found here produce a Manager whose operations all
// fail with the underlying reason.
func New(appName string, logger *zap.Logger, opts ...Option) Manager {
	o := options{
		goos:           runtime.GOOS,
		commandTimeout: DefaultCommandTimeout,
		runner:         execRunner,
		runKey:         openRunKeyStore,
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger = logger.Named("autostart").With(zap.String("app", appName))

	if err := ValidateName(appName); err != nil {
		logger.Error("Autostart disabled", zap.Error(err))
		return &unavailable{backend: o.goos, err: err}
	}

	execPath, err := resolveExecutable(o.execPath)
	if err != nil {
		logger.Error("Cannot resolve executable path", zap.Error(err))
		return &unavailable{backend: o.goos, err: err}
	}

	var m Manager
	switch o.goos {
	case "windows":
		store, err := o.runKey()
		if err != nil {
			logger.Error("Cannot open registry run key", zap.Error(err))
			return &unavailable{backend: o.goos, err: err}
		}
		m = newRunKey(appName, execPath, store, logger)
	case "linux", "darwin":
		home, err := homeDir(o.homeDir)
		if err != nil {
			logger.Error("Cannot resolve home directory", zap.Error(err))
			return &unavailable{backend: o.goos, err: err}
		}
		if o.goos == "linux" {
			m = newDesktopEntry(appName, execPath, xdgConfigDir(home), logger)
		} else {
			m = newLaunchAgent(appName, execPath, home, o.runner, o.commandTimeout, logger)
		}
	default:
		m = &unavailable{backend: "unsupported", err: fmt.Errorf("%w: %s", ErrUnsupported, o.goos)}
	}

	logger.Debug("Autostart backend selected",
		zap.String("backend", m.Backend()),
		zap.String("location", m.Location()),
		zap.String("exec", execPath))
	return m
}

// ValidateName reports whether name can be used as a registry value, file
// name and launchd label on every backend.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidName)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// resolveExecutable returns an absolute, symlink-free path.
func resolveExecutable(path string) (string, error) {
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("locating executable: %w", err)
		}
		path = exe
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolving executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return abs, nil
}

func homeDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return home, nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place, so an interrupted write never leaves a truncated registration.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// unavailable is the Manager for unsupported platforms or a failed setup.
type unavailable struct {
	backend string
	err     error
}

func (u *unavailable) IsEnabled() bool  { return false }
func (u *unavailable) Enable() Result   { return Result{Err: u.err} }
func (u *unavailable) Disable() Result  { return Result{Err: u.err} }
func (u *unavailable) Backend() string  { return u.backend }
func (u *unavailable) Location() string { return "" }

package autostart

import (
	"errors"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

// runKeyPath is the per-user auto-run list under HKEY_CURRENT_USER.
const runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`

// runKeyStore is the string-value view of the Run key. Missing values are
// reported as errors matching fs.ErrNotExist.
type runKeyStore interface {
	GetString(name string) (string, error)
	SetString(name, value string) error
	Delete(name string) error
}

// runKey implements Manager with a value in the Windows Run key.
type runKey struct {
	appName  string
	execPath string
	store    runKeyStore
	logger   *zap.Logger
}

func newRunKey(appName, execPath string, store runKeyStore, logger *zap.Logger) *runKey {
	return &runKey{appName: appName, execPath: execPath, store: store, logger: logger}
}

func (r *runKey) Backend() string  { return "windows" }
func (r *runKey) Location() string { return `HKCU\` + runKeyPath + `\` + r.appName }

func (r *runKey) IsEnabled() bool {
	value, err := r.store.GetString(r.appName)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("Reading run key failed", zap.String("location", r.Location()), zap.Error(err))
		}
		return false
	}
	// Windows paths are case-insensitive and other tools often quote them.
	return strings.EqualFold(strings.Trim(strings.TrimSpace(value), `"`), r.execPath)
}

func (r *runKey) Enable() Result {
	if err := r.store.SetString(r.appName, r.execPath); err != nil {
		return r.fail("write", err)
	}
	r.logger.Info("Autostart enabled", zap.String("location", r.Location()))
	return Result{}
}

func (r *runKey) Disable() Result {
	if err := r.store.Delete(r.appName); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return r.fail("remove", err)
	}
	r.logger.Info("Autostart disabled", zap.String("location", r.Location()))
	return Result{}
}

func (r *runKey) fail(op string, err error) Result {
	r.logger.Error("Autostart store error", zap.String("op", op), zap.String("location", r.Location()), zap.Error(err))
	return Result{Err: &StoreError{Op: op, Location: r.Location(), Err: err}}
}

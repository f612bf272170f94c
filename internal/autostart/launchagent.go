package autostart

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"howett.net/plist"
)

// launchAgentPlist is the subset of the launchd.plist schema we write.
type launchAgentPlist struct {
	Label            string   `plist:"Label"`
	ProgramArguments []string `plist:"ProgramArguments"`
	RunAtLoad        bool     `plist:"RunAtLoad"`
}

// launchAgent implements Manager with a per-user launchd agent.
type launchAgent struct {
	label     string
	execPath  string
	plistPath string
	run       commandRunner
	timeout   time.Duration
	logger    *zap.Logger
}

func newLaunchAgent(appName, execPath, home string, run commandRunner, timeout time.Duration, logger *zap.Logger) *launchAgent {
	label := "com." + appName
	return &launchAgent{
		label:     label,
		execPath:  execPath,
		plistPath: filepath.Join(home, "Library", "LaunchAgents", label+".plist"),
		run:       run,
		timeout:   timeout,
		logger:    logger,
	}
}

func (l *launchAgent) Backend() string  { return "darwin" }
func (l *launchAgent) Location() string { return l.plistPath }

func (l *launchAgent) IsEnabled() bool {
	data, err := os.ReadFile(l.plistPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("Reading launch agent failed", zap.String("path", l.plistPath), zap.Error(err))
		}
		return false
	}

	var agent launchAgentPlist
	if _, err := plist.Unmarshal(data, &agent); err != nil {
		l.logger.Warn("Parsing launch agent failed", zap.String("path", l.plistPath), zap.Error(err))
		return false
	}
	return len(agent.ProgramArguments) > 0 && agent.ProgramArguments[0] == l.execPath
}

func (l *launchAgent) Enable() Result {
	if err := os.MkdirAll(filepath.Dir(l.plistPath), 0755); err != nil {
		return l.fail("create", filepath.Dir(l.plistPath), err)
	}

	// launchctl refuses to load a label twice; drop any previous copy first.
	if l.exists() {
		if err := l.launchctl("unload", "-w", l.plistPath); err != nil {
			l.logger.Debug("Unloading previous launch agent failed", zap.Error(err))
		}
	}

	data, err := plist.MarshalIndent(launchAgentPlist{
		Label:            l.label,
		ProgramArguments: []string{l.execPath},
		RunAtLoad:        true,
	}, plist.XMLFormat, "\t")
	if err != nil {
		return l.fail("encode", l.plistPath, err)
	}
	if err := writeFileAtomic(l.plistPath, data, 0644); err != nil {
		return l.fail("write", l.plistPath, err)
	}

	if err := l.launchctl("load", "-w", l.plistPath); err != nil {
		// An unloaded plist would still run at next login; drop it so the
		// reported state stays "disabled".
		if rmErr := os.Remove(l.plistPath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			l.logger.Warn("Removing unloaded launch agent failed", zap.Error(rmErr))
		}
		return l.fail("load", l.plistPath, err)
	}
	l.logger.Info("Autostart enabled", zap.String("path", l.plistPath))
	return Result{}
}

func (l *launchAgent) Disable() Result {
	if !l.exists() {
		return Result{}
	}
	if err := l.launchctl("unload", "-w", l.plistPath); err != nil {
		// An agent that was never loaded still needs its plist removed.
		l.logger.Warn("Unloading launch agent failed", zap.Error(err))
	}
	if err := os.Remove(l.plistPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return l.fail("remove", l.plistPath, err)
	}
	l.logger.Info("Autostart disabled", zap.String("path", l.plistPath))
	return Result{}
}

func (l *launchAgent) exists() bool {
	_, err := os.Stat(l.plistPath)
	return err == nil
}

func (l *launchAgent) launchctl(args ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	return l.run(ctx, "launchctl", args...)
}

func (l *launchAgent) fail(op, location string, err error) Result {
	l.logger.Error("Autostart store error", zap.String("op", op), zap.String("location", location), zap.Error(err))
	return Result{Err: &StoreError{Op: op, Location: location, Err: err}}
}

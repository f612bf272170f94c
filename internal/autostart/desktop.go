package autostart

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/ini.v1"
)

const desktopSection = "Desktop Entry"

// desktopTemplate is the XDG autostart entry. {name} and {exec} are
// substituted on Enable.
const desktopTemplate = `[Desktop Entry]
Type=Application
Name={name}
Exec={exec}
Terminal=false
X-GNOME-Autostart-enabled=true
`

// desktopEntry implements Manager with a file in the XDG autostart directory.
type desktopEntry struct {
	appName  string
	execPath string
	dir      string
	path     string
	logger   *zap.Logger
}

func newDesktopEntry(appName, execPath, configDir string, logger *zap.Logger) *desktopEntry {
	dir := filepath.Join(configDir, "autostart")
	return &desktopEntry{
		appName:  appName,
		execPath: execPath,
		dir:      dir,
		path:     filepath.Join(dir, appName+".desktop"),
		logger:   logger,
	}
}

// xdgConfigDir honours XDG_CONFIG_HOME when it is an absolute path.
func xdgConfigDir(home string) string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" && filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(home, ".config")
}

func (d *desktopEntry) Backend() string  { return "linux" }
func (d *desktopEntry) Location() string { return d.path }

func (d *desktopEntry) IsEnabled() bool {
	data, err := os.ReadFile(d.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			d.logger.Warn("Reading desktop entry failed", zap.String("path", d.path), zap.Error(err))
		}
		return false
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, data)
	if err != nil {
		d.logger.Warn("Parsing desktop entry failed", zap.String("path", d.path), zap.Error(err))
		return false
	}

	sec, err := f.GetSection(desktopSection)
	if err != nil {
		d.logger.Warn("Desktop entry has no [Desktop Entry] section", zap.String("path", d.path))
		return false
	}
	if sec.Key("Hidden").MustBool(false) || !sec.Key("X-GNOME-Autostart-enabled").MustBool(true) {
		return false
	}
	return execMatches(sec.Key("Exec").String(), d.execPath)
}

func (d *desktopEntry) Enable() Result {
	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return d.fail("create", d.dir, err)
	}
	entry := strings.ReplaceAll(desktopTemplate, "{name}", d.appName)
	entry = strings.ReplaceAll(entry, "{exec}", quoteExec(d.execPath))
	// Some desktop environments ignore autostart entries that are not executable.
	if err := writeFileAtomic(d.path, []byte(entry), 0755); err != nil {
		return d.fail("write", d.path, err)
	}
	d.logger.Info("Autostart enabled", zap.String("path", d.path))
	return Result{}
}

func (d *desktopEntry) Disable() Result {
	if err := os.Remove(d.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return d.fail("remove", d.path, err)
	}
	d.logger.Info("Autostart disabled", zap.String("path", d.path))
	return Result{}
}

func (d *desktopEntry) fail(op, location string, err error) Result {
	d.logger.Error("Autostart store error", zap.String("op", op), zap.String("location", location), zap.Error(err))
	return Result{Err: &StoreError{Op: op, Location: location, Err: err}}
}

// quoteExec quotes a path for the Exec key when it contains characters the
// Desktop Entry format reserves.
func quoteExec(path string) string {
	if !strings.ContainsAny(path, " \t\n\"'\\><~|&;$*?#()`") {
		return path
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(path) + `"`
}

// execMatches reports whether an Exec value launches path, with or without
// trailing arguments.
func execMatches(value, path string) bool {
	value = strings.TrimSpace(value)
	if value == path {
		return true
	}
	return firstExecArg(value) == path
}

func firstExecArg(value string) string {
	if !strings.HasPrefix(value, `"`) {
		if i := strings.IndexAny(value, " \t"); i >= 0 {
			return value[:i]
		}
		return value
	}
	var b strings.Builder
	for i := 1; i < len(value); i++ {
		c := value[i]
		switch {
		case c == '\\' && i+1 < len(value):
			i++
			b.WriteByte(value[i])
		case c == '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

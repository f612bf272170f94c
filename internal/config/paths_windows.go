//go:build windows

package config

import (
	"os"
	"path/filepath"
)

func configSearchPaths() []string {
	local := os.Getenv("LOCALAPPDATA")
	appData := os.Getenv("APPDATA")
	return []string{
		filepath.Join(local, "NetSpeed", "config.yaml"),
		filepath.Join(appData, "NetSpeed", "config.yaml"),
	}
}

// Package display formats rate samples into the text shown by the overlay and
// the tray tooltip.
package display

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/Guliveer/netspeed/internal/models"
)

// Rate formats a KB/s value with a binary unit suffix, e.g. "1.5 MiB/s".
func Rate(kbps float64) string {
	if kbps < 0 {
		kbps = 0
	}
	return humanize.IBytes(uint64(kbps*1024+0.5)) + "/s"
}

// Overlay returns the two-line overlay text: download first, upload second.
func Overlay(s models.RateSample) string {
	return fmt.Sprintf("↓ %s\n↑ %s", Rate(s.DownloadKBps), Rate(s.UploadKBps))
}

// Tooltip returns the single-line tray tooltip, prefixed by the app name.
func Tooltip(appName string, s models.RateSample) string {
	return strings.TrimSpace(fmt.Sprintf("%s ↓ %s ↑ %s", appName, Rate(s.DownloadKBps), Rate(s.UploadKBps)))
}

package display

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Guliveer/netspeed/internal/models"
)

func TestRate(t *testing.T) {
	tests := []struct {
		kbps float64
		want string
	}{
		{0, "0 B/s"},
		{-3, "0 B/s"},
		{0.5, "512 B/s"},
		{1, "1.0 KiB/s"},
		{1.5, "1.5 KiB/s"},
		{1536, "1.5 MiB/s"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Rate(tt.kbps), "Rate(%v)", tt.kbps)
	}
}

func TestOverlayAndTooltip(t *testing.T) {
	s := models.RateSample{DownloadKBps: 2, UploadKBps: 1}
	require.Equal(t, "↓ 2.0 KiB/s\n↑ 1.0 KiB/s", Overlay(s))
	require.Equal(t, "NetSpeed ↓ 2.0 KiB/s ↑ 1.0 KiB/s", Tooltip("NetSpeed", s))
	require.Equal(t, "↓ 2.0 KiB/s ↑ 1.0 KiB/s", Tooltip("", s))
}

package sizeconverter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHumanReadableSizeInMB(t *testing.T) {
	require.Equal(t, "20 MB", HumanReadableSizeInMB(20*1024*1024))
	require.Equal(t, "1.50 MB", HumanReadableSizeInMB(int64(1536*1024)))
	require.Equal(t, "0.50 MB", HumanReadableSizeInMB(512.0*1024))
}

func TestHumanReadableSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{size: 0, want: "0 B"},
		{size: 512, want: "512 B"},
		{size: 2048, want: "2 KB"},
		{size: 1536, want: "1.50 KB"},
		{size: 3 * 1024 * 1024, want: "3 MB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, HumanReadableSize(tt.size))
		})
	}
}

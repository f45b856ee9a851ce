package contenttype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		filename    string
		data        []byte
		want        Kind
	}{
		{name: "plain text", contentType: "text/plain; charset=utf-8", filename: "a.bin", want: KindText},
		{name: "html", contentType: "text/html", want: KindHTML},
		{name: "pdf", contentType: "application/pdf", want: KindPDF},
		{name: "epub", contentType: "application/epub+zip", want: KindEPUB},
		{name: "audio", contentType: "audio/mpeg", want: KindAudio},
		{name: "octet stream epub by extension", contentType: "application/octet-stream", filename: "Book.EPUB", want: KindEPUB},
		{name: "no content type audiobook", filename: "chapter1.m4b", want: KindAudio},
		{name: "no content type sniffed pdf", filename: "noext", data: []byte("%PDF-1.7\n"), want: KindPDF},
		{name: "no content type sniffed text", filename: "noext", data: []byte("Call me Ishmael."), want: KindText},
		{name: "unsupported declared type", contentType: "image/png", filename: "cover.txt", want: KindUnknown},
		{name: "nothing to go on", want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Detect(tt.contentType, tt.filename, tt.data))
		})
	}
}

func TestKind_IsAudio(t *testing.T) {
	require.True(t, KindAudio.IsAudio())
	require.False(t, KindPDF.IsAudio())
}

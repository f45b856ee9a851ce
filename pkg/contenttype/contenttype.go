package contenttype

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindUnknown Kind = ""
	KindText    Kind = "text"
	KindHTML    Kind = "html"
	KindEPUB    Kind = "epub"
	KindPDF     Kind = "pdf"
	KindAudio   Kind = "audio"
)

// IsAudio reports whether the kind is played rather than read.
func (k Kind) IsAudio() bool {
	return k == KindAudio
}

func IsPlainText(contentType string) bool {
	return strings.HasPrefix(contentType, "text/plain")
}

func IsHTML(contentType string) bool {
	return strings.HasPrefix(contentType, "text/html") || strings.HasPrefix(contentType, "application/xhtml+xml")
}

func IsPDF(contentType string) bool {
	return strings.HasPrefix(contentType, "application/pdf")
}

func IsEPUB(contentType string) bool {
	return strings.HasPrefix(contentType, "application/epub+zip")
}

func IsAudio(contentType string) bool {
	return strings.HasPrefix(contentType, "audio/")
}

func isGeneric(contentType string) bool {
	return contentType == "" || strings.HasPrefix(contentType, "application/octet-stream")
}

// Detect classifies an upload by its declared content type, then by file
// extension, then by sniffing the first bytes of data.
func Detect(contentType, filename string, data []byte) Kind {
	if kind := fromContentType(contentType); kind != KindUnknown {
		return kind
	}
	if isGeneric(contentType) {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
			if kind := fromContentType(byExt); kind != KindUnknown {
				return kind
			}
		}
		if kind := fromExtension(filename); kind != KindUnknown {
			return kind
		}
		if len(data) > 0 {
			return fromContentType(http.DetectContentType(data))
		}
	}
	return KindUnknown
}

func fromContentType(contentType string) Kind {
	switch {
	case IsPlainText(contentType):
		return KindText
	case IsHTML(contentType):
		return KindHTML
	case IsPDF(contentType):
		return KindPDF
	case IsEPUB(contentType):
		return KindEPUB
	case IsAudio(contentType):
		return KindAudio
	}
	return KindUnknown
}

// mime tables differ between systems, these are the ones that matter for imports
func fromExtension(filename string) Kind {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		return KindText
	case ".html", ".htm", ".xhtml":
		return KindHTML
	case ".epub":
		return KindEPUB
	case ".pdf":
		return KindPDF
	case ".mp3", ".m4a", ".m4b", ".ogg", ".wav", ".flac", ".aac":
		return KindAudio
	}
	return KindUnknown
}

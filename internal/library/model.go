package library

import (
	"time"

	"github.com/pechorka/readstreak/pkg/contenttype"
)

type Book struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Filename        string           `json:"filename,omitempty"`
	Kind            contenttype.Kind `json:"kind"`
	ContentType     string           `json:"contentType,omitempty"`
	Size            int64            `json:"size"`
	CheckSum        string           `json:"checksum"`
	Progress        float64          `json:"progress"`
	DurationSeconds float64          `json:"durationSeconds,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	ModifiedAt      time.Time        `json:"modifiedAt"`
}

func (b Book) Completed() bool {
	return b.Progress >= 100
}

type NewBook struct {
	Title       string
	Filename    string
	ContentType string
	Data        []byte
}

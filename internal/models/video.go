package models

import (
	"time"

	"github.com/google/uuid"
)

type Video struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
	URL          string
	Title        string
	Description  string
	Tags         string // freeform, tokens delimited with spaces or commas
	UploadedBy   string
	ContactEmail string
	Archived     bool
}

// Partial video update. Nil fields are left untouched
type VideoPatch struct {
	URL          *string
	Title        *string
	Description  *string
	Tags         *string
	UploadedBy   *string
	ContactEmail *string
	Archived     *bool
}

// Apply patch to the video and return the merged copy
func (p VideoPatch) Apply(v Video) Video {
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}

	setString(&v.URL, p.URL)
	setString(&v.Title, p.Title)
	setString(&v.Description, p.Description)
	setString(&v.Tags, p.Tags)
	setString(&v.UploadedBy, p.UploadedBy)
	setString(&v.ContactEmail, p.ContactEmail)
	if p.Archived != nil {
		v.Archived = *p.Archived
	}

	return v
}

package models

import "time"

// PaperImage is one image extracted from a paper's source archive.
// Owned exclusively by one paper and deleted with it.
type PaperImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PaperID uint `json:"-" gorm:"index;not null"`

	// Filename is derived from the arXiv id plus the original basename,
	// to avoid collisions in the shared images/ prefix.
	Filename string `json:"filename"`
	S3Link   string `json:"s3_link,omitempty"`
}

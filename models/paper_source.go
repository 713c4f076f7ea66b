package models

import "time"

// PaperSource is one TeX source file extracted from a paper's archive.
type PaperSource struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PaperID uint   `json:"-" gorm:"index;not null"`
	Content string `json:"content" gorm:"type:text"`
}

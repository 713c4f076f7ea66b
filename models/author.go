package models

import "time"

// Author is deduplicated by name. Names are not globally unique in reality,
// which is a known data-quality caveat we inherit from the source data.
type Author struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Affiliation string `json:"affiliation,omitempty" gorm:"index"`
	EmailDomain string `json:"email_domain,omitempty" gorm:"index"`
	ScholarID   string `json:"scholar_id,omitempty"`
	Citations   int    `json:"citations" gorm:"default:0;index"`
}

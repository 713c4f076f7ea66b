package models

import "time"

// Subject is an arXiv category, keyed by its short code (e.g. cs.LG).
// Created lazily on first sight and shared across papers.
type Subject struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ShortName string `json:"short_name" gorm:"uniqueIndex;not null"`
	FullName  string `json:"full_name"`
}

package models

import (
	"time"
)

// ArxivPaper represents one scraped paper and everything derived from it.
type ArxivPaper struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// ArxivID is the stable external key. Ingestion is a no-op if it exists.
	ArxivID string `json:"arxiv_id" gorm:"uniqueIndex;not null"`

	// Fields scraped from the abstract page.
	Title            string     `json:"title" gorm:"index"`
	Abstract         string     `json:"abstract" gorm:"type:text"`
	Authors          []Author   `json:"authors" gorm:"many2many:paper_authors"`
	PrimarySubjectID *uint      `json:"-"`
	PrimarySubject   *Subject   `json:"primary_subject,omitempty"`
	Subjects         []Subject  `json:"subjects" gorm:"many2many:paper_subjects"`
	Comment          string     `json:"comment,omitempty" gorm:"type:text"`
	DOI              string     `json:"doi,omitempty"`
	JournalRef       string     `json:"journal_ref,omitempty"`
	PublicationDate  *time.Time `json:"publication_date" gorm:"index"`

	// Fields we create.
	Summary              string `json:"summary" gorm:"type:text"`
	Citations            int    `json:"citations" gorm:"default:0;index"`
	TotalAuthorCitations int    `json:"total_author_citations" gorm:"default:0;index"`

	// Blob references (S3).
	PDFLink        string `json:"pdf_link,omitempty"`
	ScreenshotLink string `json:"screenshot_link,omitempty"`
	SourceLink     string `json:"source_link,omitempty"`

	Images  []PaperImage  `json:"images" gorm:"foreignKey:PaperID;constraint:OnDelete:CASCADE"`
	Sources []PaperSource `json:"sources" gorm:"foreignKey:PaperID;constraint:OnDelete:CASCADE"`
}

// AbstractURL returns the public abstract page for this paper.
func (p *ArxivPaper) AbstractURL() string {
	return "https://arxiv.org/abs/" + p.ArxivID
}

// PDFURL returns the public PDF location for this paper.
func (p *ArxivPaper) PDFURL() string {
	return "https://arxiv.org/pdf/" + p.ArxivID + ".pdf"
}

// SourceURL returns the public e-print archive location for this paper.
func (p *ArxivPaper) SourceURL() string {
	return "https://arxiv.org/e-print/" + p.ArxivID
}

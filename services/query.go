package services

import (
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"arxiv-radar/models"
)

// PageSize is the fixed page size of the read API.
const PageSize = 15

// PaperRow is one row of the read API response. Mirrors what the front
// end renders per card.
type PaperRow struct {
	ArxivID              string     `json:"arxiv_id"`
	ImageURL             string     `json:"image_url"`
	Title                string     `json:"title"`
	Summary              string     `json:"summary"`
	FirstAuthor          string     `json:"first_author"`
	Authors              []string   `json:"authors"`
	AuthorCount          int        `json:"author_count"`
	PublicationDate      *time.Time `json:"publication_date"`
	Citations            int        `json:"citations"`
	TotalAuthorCitations int        `json:"total_author_citations"`
}

// Date preset windows for the d= filter.
var dateWindows = map[string]time.Duration{
	"today":      36 * time.Hour,
	"this-week":  6 * 24 * time.Hour,
	"this-month": 29 * 24 * time.Hour,
	"this-year":  364 * 24 * time.Hour,
}

// QueryService is the read side: free-text search, date presets, offset
// pagination over ingested papers.
type QueryService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

// NewQueryService creates the read-side service.
func NewQueryService(db *gorm.DB, logger *zap.Logger) *QueryService {
	return &QueryService{DB: db, Logger: logger}
}

// Search returns one page of papers matching the free-text query and date
// preset, newest first, de-duplicated, starting at offset.
func (q *QueryService) Search(query, dateFilter string, offset int) ([]PaperRow, error) {
	db := q.DB.Model(&models.ArxivPaper{}).Distinct("arxiv_papers.*")

	if query != "" {
		like := "%" + query + "%"
		db = db.
			Joins("LEFT JOIN paper_authors ON paper_authors.arxiv_paper_id = arxiv_papers.id").
			Joins("LEFT JOIN authors ON authors.id = paper_authors.author_id").
			Where(
				"LOWER(arxiv_papers.title) LIKE LOWER(?) OR LOWER(arxiv_papers.abstract) LIKE LOWER(?) OR LOWER(arxiv_papers.summary) LIKE LOWER(?) OR LOWER(authors.name) LIKE LOWER(?)",
				like, like, like, like,
			)
	}

	if window, ok := dateWindows[dateFilter]; ok {
		now := time.Now()
		db = db.Where("arxiv_papers.publication_date BETWEEN ? AND ?", now.Add(-window), now)
	}

	var papers []models.ArxivPaper
	err := db.
		Preload("Authors").
		Preload("Images").
		Order("arxiv_papers.publication_date DESC").
		Offset(offset).
		Limit(PageSize).
		Find(&papers).Error
	if err != nil {
		q.Logger.Error("Paper query failed", zap.Error(err))
		return nil, err
	}

	rows := make([]PaperRow, 0, len(papers))
	for _, p := range papers {
		row := PaperRow{
			ArxivID:              p.ArxivID,
			ImageURL:             p.ScreenshotLink,
			Title:                p.Title,
			Summary:              p.Summary,
			Authors:              make([]string, 0, len(p.Authors)),
			AuthorCount:          len(p.Authors),
			PublicationDate:      p.PublicationDate,
			Citations:            p.Citations,
			TotalAuthorCitations: p.TotalAuthorCitations,
		}
		if len(p.Images) > 0 && p.Images[0].S3Link != "" {
			row.ImageURL = p.Images[0].S3Link
		}
		if len(p.Authors) > 0 {
			row.FirstAuthor = p.Authors[0].Name
		}
		for _, a := range p.Authors {
			row.Authors = append(row.Authors, a.Name)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

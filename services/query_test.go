package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"arxiv-radar/models"
)

// seedPaper creates a paper published daysAgo days in the past, linked to
// the given authors (created on demand, shared by name).
func seedPaper(t *testing.T, db *gorm.DB, arxivID, title string, daysAgo int, authorNames ...string) *models.ArxivPaper {
	t.Helper()
	date := time.Now().AddDate(0, 0, -daysAgo)
	paper := models.ArxivPaper{
		ArxivID:         arxivID,
		Title:           title,
		Abstract:        "Abstract of " + title,
		Summary:         "Summary of " + title,
		PublicationDate: &date,
		ScreenshotLink:  "https://blobs.test/screenshots/" + arxivID + ".png",
	}
	require.NoError(t, db.Create(&paper).Error)

	for _, name := range authorNames {
		var author models.Author
		require.NoError(t, db.Where(models.Author{Name: name}).FirstOrCreate(&author).Error)
		require.NoError(t, db.Model(&paper).Association("Authors").Append(&author))
	}
	return &paper
}

func TestSearchReturnsNewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedPaper(t, db, "2306.01001", "Oldest", 10, "Alice Smith")
	seedPaper(t, db, "2306.01002", "Middle", 5, "Bob Jones")
	seedPaper(t, db, "2306.01003", "Newest", 1, "Carol White")

	q := NewQueryService(db, zap.NewNop())
	rows, err := q.Search("", "", 0)
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "Newest", rows[0].Title)
	assert.Equal(t, "Middle", rows[1].Title)
	assert.Equal(t, "Oldest", rows[2].Title)
	assert.Equal(t, "Carol White", rows[0].FirstAuthor)
	assert.Equal(t, 1, rows[0].AuthorCount)
}

func TestSearchByTitleCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	seedPaper(t, db, "2306.01001", "Diffusion Models for Audio", 1)
	seedPaper(t, db, "2306.01002", "Graph Networks", 2)

	q := NewQueryService(db, zap.NewNop())
	rows, err := q.Search("diffusion", "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2306.01001", rows[0].ArxivID)
}

func TestSearchByAuthorName(t *testing.T) {
	db := newTestDB(t)
	seedPaper(t, db, "2306.01001", "Paper One", 1, "Alice Smith", "Bob Jones")
	seedPaper(t, db, "2306.01002", "Paper Two", 2, "Alice Smith")
	seedPaper(t, db, "2306.01003", "Paper Three", 3, "Carol White")

	q := NewQueryService(db, zap.NewNop())
	rows, err := q.Search("alice", "", 0)
	require.NoError(t, err)

	require.Len(t, rows, 2, "both of Alice's papers, each exactly once")
	assert.Equal(t, "2306.01001", rows[0].ArxivID)
	assert.Equal(t, "2306.01002", rows[1].ArxivID)
}

func TestSearchDatePresets(t *testing.T) {
	db := newTestDB(t)
	seedPaper(t, db, "2306.01001", "Fresh", 1)
	seedPaper(t, db, "2306.01002", "Last Week", 4)
	seedPaper(t, db, "2306.01003", "Last Month", 20)
	seedPaper(t, db, "2306.01004", "Ancient", 400)

	q := NewQueryService(db, zap.NewNop())

	tests := []struct {
		preset string
		want   int
	}{
		{"today", 1},
		{"this-week", 2},
		{"this-month", 3},
		{"this-year", 3},
		{"", 4},
		{"bogus-preset", 4},
	}
	for _, tt := range tests {
		t.Run("preset "+tt.preset, func(t *testing.T) {
			rows, err := q.Search("", tt.preset, 0)
			require.NoError(t, err)
			assert.Len(t, rows, tt.want)
		})
	}
}

func TestSearchPagination(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 20; i++ {
		seedPaper(t, db, fmt.Sprintf("2306.%05d", i+1), fmt.Sprintf("Paper %02d", i), i)
	}

	q := NewQueryService(db, zap.NewNop())

	first, err := q.Search("", "", 0)
	require.NoError(t, err)
	assert.Len(t, first, PageSize)

	second, err := q.Search("", "", PageSize)
	require.NoError(t, err)
	assert.Len(t, second, 20-PageSize)

	// Pages must not overlap.
	seen := map[string]bool{}
	for _, row := range first {
		seen[row.ArxivID] = true
	}
	for _, row := range second {
		assert.False(t, seen[row.ArxivID], "identifier %s appeared on both pages", row.ArxivID)
	}
}

func TestSearchPrefersExtractedImage(t *testing.T) {
	db := newTestDB(t)
	paper := seedPaper(t, db, "2306.01001", "With Figure", 1)
	require.NoError(t, db.Create(&models.PaperImage{
		PaperID:  paper.ID,
		Filename: "2306.01001_arch.png",
		S3Link:   "https://blobs.test/images/2306.01001_arch.png",
	}).Error)
	seedPaper(t, db, "2306.01002", "Without Figure", 2)

	q := NewQueryService(db, zap.NewNop())
	rows, err := q.Search("", "", 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "https://blobs.test/images/2306.01001_arch.png", rows[0].ImageURL)
	assert.Equal(t, "https://blobs.test/screenshots/2306.01002.png", rows[1].ImageURL)
}

func TestSearchEmptyDatabase(t *testing.T) {
	db := newTestDB(t)
	q := NewQueryService(db, zap.NewNop())
	rows, err := q.Search("anything", "this-week", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

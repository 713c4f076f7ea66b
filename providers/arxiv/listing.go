package arxiv

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing extracts the paper identifiers from one category listing
// page, in document order, with the "arXiv:" prefix stripped. Pagination
// beyond this page is the caller's responsibility.
func ParseListing(html []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Field: "document"}
	}

	var ids []string
	doc.Find("span.list-identifier a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.Contains(href, "/abs/") {
			return
		}
		id := strings.TrimSpace(s.Text())
		id = strings.TrimPrefix(id, "arXiv:")
		if id != "" {
			ids = append(ids, id)
		}
	})
	return ids, nil
}

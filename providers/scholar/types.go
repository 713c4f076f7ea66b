package scholar

// PublicationResult is the slice of a paper-search hit we actually consume.
type PublicationResult struct {
	PaperID   string
	Title     string
	Citations int
}

// AuthorResult is the slice of an author-search hit we actually consume.
type AuthorResult struct {
	AuthorID    string
	Name        string
	Affiliation string
	EmailDomain string
	Citations   int
}

// Citation-graph API JSON structures.
type publicationSearchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		PaperID       string `json:"paperId"`
		Title         string `json:"title"`
		CitationCount int    `json:"citationCount"`
	} `json:"data"`
}

type authorSearchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		AuthorID      string   `json:"authorId"`
		Name          string   `json:"name"`
		Affiliations  []string `json:"affiliations"`
		EmailDomain   string   `json:"emailDomain"`
		CitationCount int      `json:"citationCount"`
	} `json:"data"`
}

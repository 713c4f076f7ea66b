package scholar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"arxiv-radar/config"
)

// ErrNoResult means the search succeeded but returned nothing usable.
// Callers fall back to unenriched records; this is never fatal.
var ErrNoResult = errors.New("scholar: no result")

const (
	publicationFields = "title,citationCount"
	authorFields      = "name,affiliations,emailDomain,citationCount"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Client queries the citation-graph service for paper and author lookups.
// Both lookups are best-effort; only the first result is ever used.
type Client struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewClient creates a new citation-graph client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	return &Client{Config: cfg, Logger: logger}
}

// SearchPublication looks a paper up by exact-quoted title and returns the
// first hit.
func (c *Client) SearchPublication(ctx context.Context, title string) (*PublicationResult, error) {
	params := url.Values{
		"query":  {fmt.Sprintf("%q", title)},
		"limit":  {"1"},
		"fields": {publicationFields},
	}
	reqURL := c.Config.ScholarBaseURL + "/paper/search?" + params.Encode()

	var sr publicationSearchResponse
	if err := c.getJSON(ctx, reqURL, &sr); err != nil {
		return nil, err
	}
	if len(sr.Data) == 0 {
		return nil, ErrNoResult
	}

	first := sr.Data[0]
	return &PublicationResult{
		PaperID:   first.PaperID,
		Title:     first.Title,
		Citations: first.CitationCount,
	}, nil
}

// SearchAuthor looks an author up by name and returns the first hit. The
// email domain is normalized without its leading "@".
func (c *Client) SearchAuthor(ctx context.Context, name string) (*AuthorResult, error) {
	params := url.Values{
		"query":  {name},
		"limit":  {"1"},
		"fields": {authorFields},
	}
	reqURL := c.Config.ScholarBaseURL + "/author/search?" + params.Encode()

	var sr authorSearchResponse
	if err := c.getJSON(ctx, reqURL, &sr); err != nil {
		return nil, err
	}
	if len(sr.Data) == 0 {
		return nil, ErrNoResult
	}

	first := sr.Data[0]
	result := &AuthorResult{
		AuthorID:    first.AuthorID,
		Name:        first.Name,
		EmailDomain: strings.TrimPrefix(first.EmailDomain, "@"),
		Citations:   first.CitationCount,
	}
	if len(first.Affiliations) > 0 {
		result.Affiliation = first.Affiliations[0]
	}
	return result, nil
}

// getJSON performs one GET and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	if c.Config.ScholarAPIKey != "" {
		req.Header.Set("x-api-key", c.Config.ScholarAPIKey)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("scholar API returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing scholar response: %w", err)
	}
	return nil
}

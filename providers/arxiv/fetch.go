package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"arxiv-radar/config"
)

// CustomTransport adds a browser User-Agent header to every request.
// arXiv rejects requests from default Go clients often enough to matter.
type CustomTransport struct {
	Transport http.RoundTripper
}

func (t *CustomTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36")
	return t.Transport.RoundTrip(req)
}

// httpClient is shared by all arXiv fetches.
var httpClient = &http.Client{
	Timeout: 60 * time.Second,
	Transport: &CustomTransport{
		Transport: http.DefaultTransport,
	},
}

// Fetcher downloads abstract pages, PDFs, source archives and listing pages.
// It performs no retries; a failed fetch is final for that run.
type Fetcher struct {
	Config *config.Config
	Logger *zap.Logger
}

// NewFetcher creates a new arXiv fetcher.
func NewFetcher(cfg *config.Config, logger *zap.Logger) *Fetcher {
	return &Fetcher{Config: cfg, Logger: logger}
}

// AbsURL returns the abstract page URL for an identifier.
func (f *Fetcher) AbsURL(arxivID string) string {
	return fmt.Sprintf("%s/abs/%s", f.Config.ArxivBaseURL, arxivID)
}

// PDFURL returns the PDF URL for an identifier.
func (f *Fetcher) PDFURL(arxivID string) string {
	return fmt.Sprintf("%s/pdf/%s.pdf", f.Config.ArxivBaseURL, arxivID)
}

// SourceURL returns the e-print archive URL for an identifier.
func (f *Fetcher) SourceURL(arxivID string) string {
	return fmt.Sprintf("%s/e-print/%s", f.Config.ArxivBaseURL, arxivID)
}

// ListingURL returns the category listing URL for one page.
func (f *Fetcher) ListingURL(section, page string, show int) string {
	return fmt.Sprintf("%s/list/%s/%s?show=%d", f.Config.ArxivBaseURL, section, page, show)
}

// FetchAbs downloads the abstract page HTML for an identifier.
func (f *Fetcher) FetchAbs(ctx context.Context, arxivID string) ([]byte, error) {
	return f.fetch(ctx, f.AbsURL(arxivID))
}

// FetchPDF downloads the PDF bytes for an identifier.
func (f *Fetcher) FetchPDF(ctx context.Context, arxivID string) ([]byte, error) {
	return f.fetch(ctx, f.PDFURL(arxivID))
}

// FetchSource downloads the source archive for an identifier. Many papers
// have no archive, so callers treat failures here as non-fatal.
func (f *Fetcher) FetchSource(ctx context.Context, arxivID string) ([]byte, error) {
	return f.fetch(ctx, f.SourceURL(arxivID))
}

// FetchListing downloads one category listing page.
func (f *Fetcher) FetchListing(ctx context.Context, section, page string, show int) ([]byte, error) {
	return f.fetch(ctx, f.ListingURL(section, page, show))
}

// fetch performs a single GET and maps every failure onto FetchError.
func (f *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		f.Logger.Debug("Request failed", zap.String("url", url), zap.Error(err))
		return nil, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.Logger.Debug("Non-200 response", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return data, nil
}

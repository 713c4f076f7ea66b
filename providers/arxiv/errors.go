package arxiv

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed marks any network or non-200 failure while fetching
	// an arXiv resource. Fatal only for the PDF; the caller decides.
	ErrFetchFailed = errors.New("arxiv: fetch failed")

	// ErrParseFailed marks a detail page missing a required structural
	// element. Always fatal, ingestion aborts before any record is created.
	ErrParseFailed = errors.New("arxiv: parse failed")
)

// FetchError carries the URL and HTTP status of a failed resource fetch.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError names the required field that was missing from a detail page.
type ParseError struct {
	Field string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing abstract page: missing required field %q", e.Field)
}

func (e *ParseError) Is(target error) bool { return target == ErrParseFailed }

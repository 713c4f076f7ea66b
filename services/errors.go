package services

import "errors"

var (
	// ErrExtractionFailed marks a corrupt or missing source archive.
	// Ingestion proceeds with zero images and sources.
	ErrExtractionFailed = errors.New("services: archive extraction failed")

	// ErrRenderFailed marks a failed first-page render. The paper keeps
	// no preview instead of aborting.
	ErrRenderFailed = errors.New("services: screenshot render failed")

	// ErrSummarizationFailed is the one post-record failure that rolls the
	// whole record back. A paper without a summary is incomplete for us.
	ErrSummarizationFailed = errors.New("services: summarization failed")
)

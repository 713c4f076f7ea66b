package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"arxiv-radar/config"
	"arxiv-radar/models"
	"arxiv-radar/providers/arxiv"
	"arxiv-radar/providers/scholar"
)

// ResourceFetcher is what the pipeline needs from the arXiv side.
type ResourceFetcher interface {
	FetchAbs(ctx context.Context, arxivID string) ([]byte, error)
	FetchPDF(ctx context.Context, arxivID string) ([]byte, error)
	FetchSource(ctx context.Context, arxivID string) ([]byte, error)
	FetchListing(ctx context.Context, section, page string, show int) ([]byte, error)
}

// CitationSource is what the pipeline needs from the citation graph.
type CitationSource interface {
	SearchPublication(ctx context.Context, title string) (*scholar.PublicationResult, error)
	SearchAuthor(ctx context.Context, name string) (*scholar.AuthorResult, error)
}

// AbstractSummarizer produces the mandatory two-sentence summary.
type AbstractSummarizer interface {
	Summarize(ctx context.Context, abstract string) (string, error)
}

// PreviewRenderer renders the first PDF page to a raster image.
type PreviewRenderer interface {
	Render(ctx context.Context, pdf []byte) ([]byte, error)
}

// BlobStore persists binary artifacts and hands back public links.
type BlobStore interface {
	Upload(ctx context.Context, key string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Outcome is the terminal state of one identifier's ingestion.
type Outcome int

const (
	// OutcomeCommitted means a complete record was persisted.
	OutcomeCommitted Outcome = iota
	// OutcomeSkipped means the identifier already existed; no-op.
	OutcomeSkipped
	// OutcomeAborted means ingestion stopped before any record was created.
	OutcomeAborted
	// OutcomeRolledBack means the partially-built record was deleted again.
	OutcomeRolledBack
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCommitted:
		return "committed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeAborted:
		return "aborted"
	case OutcomeRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// IngestService orchestrates the full pipeline for one identifier:
// fetch, parse, persist, extract, screenshot, summarize, enrich, link.
// Safe to re-invoke on the same identifier set; existing papers are skipped.
type IngestService struct {
	Config     *config.Config
	DB         *gorm.DB
	Blobs      BlobStore
	Logger     *zap.Logger
	Fetcher    ResourceFetcher
	Scholar    CitationSource
	Summarizer AbstractSummarizer
	Renderer   PreviewRenderer
}

// NewIngestService wires the pipeline with its production collaborators.
func NewIngestService(cfg *config.Config, db *gorm.DB, blobs BlobStore, logger *zap.Logger) *IngestService {
	return &IngestService{
		Config:     cfg,
		DB:         db,
		Blobs:      blobs,
		Logger:     logger,
		Fetcher:    arxiv.NewFetcher(cfg, logger),
		Scholar:    scholar.NewClient(cfg, logger),
		Summarizer: NewSummarizer(cfg, logger),
		Renderer:   NewScreenshotter(logger),
	}
}

// BatchStats counts terminal states across one listing crawl.
type BatchStats struct {
	Committed  int
	Skipped    int
	Aborted    int
	RolledBack int
}

// IngestFromListing crawls one category listing page and ingests every
// identifier on it. One identifier's failure never blocks the rest.
func (s *IngestService) IngestFromListing(ctx context.Context, section, page string, numPapers int, scholarLookups bool) (BatchStats, error) {
	log := s.Logger.With(zap.String("section", section), zap.String("page", page))

	var stats BatchStats

	html, err := s.Fetcher.FetchListing(ctx, section, page, numPapers)
	if err != nil {
		log.Error("Listing fetch failed", zap.Error(err))
		return stats, err
	}

	ids, err := arxiv.ParseListing(html)
	if err != nil {
		log.Error("Listing parse failed", zap.Error(err))
		return stats, err
	}
	log.Info("Listing crawled", zap.Int("paper_ids", len(ids)))

	for _, id := range ids {
		outcome, err := s.IngestPaper(ctx, id, scholarLookups)
		if err != nil {
			log.Warn("Ingestion failed for identifier",
				zap.String("arxiv_id", id),
				zap.String("outcome", outcome.String()),
				zap.Error(err))
		}
		switch outcome {
		case OutcomeCommitted:
			stats.Committed++
		case OutcomeSkipped:
			stats.Skipped++
		case OutcomeAborted:
			stats.Aborted++
		case OutcomeRolledBack:
			stats.RolledBack++
		}
	}

	log.Info("Listing ingestion finished",
		zap.Int("committed", stats.Committed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("aborted", stats.Aborted),
		zap.Int("rolled_back", stats.RolledBack))
	return stats, nil
}

// IngestPaper runs the per-identifier state machine. Terminal states:
// skipped (already present), aborted (parse or PDF fetch failed, nothing
// persisted), rolled back (summarization failed, record deleted again),
// committed.
func (s *IngestService) IngestPaper(ctx context.Context, arxivID string, scholarLookups bool) (Outcome, error) {
	log := s.Logger.With(zap.String("arxiv_id", arxivID))

	var existing models.ArxivPaper
	if err := s.DB.Where("arxiv_id = ?", arxivID).First(&existing).Error; err == nil {
		log.Info("Paper already exists, skipping")
		return OutcomeSkipped, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return OutcomeAborted, err
	}

	log.Info("Scraping paper")

	html, err := s.Fetcher.FetchAbs(ctx, arxivID)
	if err != nil {
		log.Warn("Abstract page fetch failed", zap.Error(err))
		return OutcomeAborted, err
	}

	detail, err := arxiv.ParseAbs(html)
	if err != nil {
		log.Warn("Abstract page parse failed", zap.Error(err))
		return OutcomeAborted, err
	}
	log.Info("Parsed detail page", zap.String("title", detail.Title))
	if detail.SubmittedOn == nil {
		// Upstream never rejected missing dates; keep the record degraded.
		log.Warn("No submission date on detail page")
	}

	pdf, err := s.Fetcher.FetchPDF(ctx, arxivID)
	if err != nil {
		log.Warn("PDF download failed, aborting", zap.Error(err))
		return OutcomeAborted, err
	}

	// Many papers publish no source archive; absence is fine.
	source, err := s.Fetcher.FetchSource(ctx, arxivID)
	if err != nil {
		log.Info("No source archive available", zap.Error(err))
		source = nil
	}

	primarySubject, err := s.lookupOrCreateSubject(detail.PrimarySubject)
	if err != nil {
		return OutcomeAborted, err
	}

	paper := models.ArxivPaper{
		ArxivID:          arxivID,
		Title:            detail.Title,
		Abstract:         detail.Abstract,
		PrimarySubjectID: &primarySubject.ID,
		Comment:          detail.Comment,
		DOI:              detail.DOI,
		JournalRef:       detail.JournalRef,
		PublicationDate:  detail.SubmittedOn,
	}

	// Blob uploads are best-effort: a missing link beats a missing paper.
	if link, err := s.Blobs.Upload(ctx, "pdfs/"+arxivID+".pdf", pdf); err != nil {
		log.Error("PDF upload failed", zap.Error(err))
	} else {
		paper.PDFLink = link
	}
	if source != nil {
		if link, err := s.Blobs.Upload(ctx, "tar_sources/"+arxivID+".tar.gz", source); err != nil {
			log.Error("Source archive upload failed", zap.Error(err))
		} else {
			paper.SourceLink = link
		}
	}

	if err := s.DB.Create(&paper).Error; err != nil {
		log.Error("Failed to create paper record", zap.Error(err))
		return OutcomeAborted, err
	}

	if source != nil {
		s.attachSources(ctx, &paper, source, log)
	}

	s.attachScreenshot(ctx, &paper, pdf, log)

	summary, err := s.Summarizer.Summarize(ctx, paper.Abstract)
	if err != nil {
		log.Error("Summarization failed, rolling record back", zap.Error(err))
		s.rollback(ctx, &paper, log)
		return OutcomeRolledBack, fmt.Errorf("%w: %v", ErrSummarizationFailed, err)
	}
	paper.Summary = summary

	interesting := false

	if scholarLookups {
		if pub, err := s.Scholar.SearchPublication(ctx, paper.Title); err != nil {
			log.Info("Could not find paper on citation graph", zap.Error(err))
		} else {
			paper.Citations = pub.Citations
			log.Info("Paper citations resolved", zap.Int("citations", pub.Citations))
			if pub.Citations > s.Config.PaperCitationThreshold {
				interesting = true
				log.Info("Interesting paper: citation count", zap.Int("citations", pub.Citations))
			}
		}
	}

	totalAuthorCitations := 0
	for _, name := range detail.Authors {
		author, authorInteresting := s.lookupOrCreateAuthor(ctx, name, scholarLookups, log)
		if author == nil {
			continue
		}
		if authorInteresting {
			interesting = true
		}
		totalAuthorCitations += author.Citations
		if err := s.DB.Model(&paper).Association("Authors").Append(author); err != nil {
			log.Error("Failed to link author", zap.String("author", name), zap.Error(err))
		}
	}
	paper.TotalAuthorCitations = totalAuthorCitations
	if totalAuthorCitations > s.Config.AuthorCitationSumThreshold {
		interesting = true
		log.Info("Interesting paper: total author citations", zap.Int("total", totalAuthorCitations))
	}

	for _, ref := range detail.Subjects {
		subject, err := s.lookupOrCreateSubject(ref)
		if err != nil {
			log.Error("Failed to resolve subject", zap.String("code", ref.Code), zap.Error(err))
			continue
		}
		if err := s.DB.Model(&paper).Association("Subjects").Append(subject); err != nil {
			log.Error("Failed to link subject", zap.String("code", ref.Code), zap.Error(err))
		}
	}

	if err := s.DB.Save(&paper).Error; err != nil {
		log.Error("Failed to save paper", zap.Error(err))
		return OutcomeAborted, err
	}

	if interesting {
		// Diagnostic only; deliberately not persisted.
		log.Info("Paper classified as interesting", zap.String("title", paper.Title))
	}
	log.Info("Paper ingested", zap.Uint("id", paper.ID))
	return OutcomeCommitted, nil
}

// attachSources extracts the archive and persists image and TeX sub-records.
// Extraction failure degrades to zero sources.
func (s *IngestService) attachSources(ctx context.Context, paper *models.ArxivPaper, source []byte, log *zap.Logger) {
	result, err := ExtractSources(source, log)
	if err != nil {
		// Some e-prints are a bare PDF rather than a tar.gz; not fatal.
		log.Info("Source archive extraction failed", zap.Error(err))
		return
	}

	for _, img := range result.Images {
		filename := paper.ArxivID + "_" + img.Basename
		record := models.PaperImage{PaperID: paper.ID, Filename: filename}
		if link, err := s.Blobs.Upload(ctx, "images/"+filename, img.Data); err != nil {
			log.Error("Image upload failed", zap.String("filename", filename), zap.Error(err))
		} else {
			record.S3Link = link
		}
		if err := s.DB.Create(&record).Error; err != nil {
			log.Error("Failed to create image record", zap.String("filename", filename), zap.Error(err))
		}
	}
	log.Info("Added images", zap.Int("count", len(result.Images)))

	for _, src := range result.Sources {
		record := models.PaperSource{PaperID: paper.ID, Content: src.Content}
		if err := s.DB.Create(&record).Error; err != nil {
			log.Error("Failed to create source record", zap.String("filename", src.Basename), zap.Error(err))
		}
	}
	log.Info("Added sources", zap.Int("count", len(result.Sources)))
}

// attachScreenshot renders and uploads the first-page preview. Optional.
func (s *IngestService) attachScreenshot(ctx context.Context, paper *models.ArxivPaper, pdf []byte, log *zap.Logger) {
	img, err := s.Renderer.Render(ctx, pdf)
	if err != nil {
		log.Warn("No preview available", zap.Error(err))
		return
	}
	link, err := s.Blobs.Upload(ctx, "screenshots/"+paper.ArxivID+".png", img)
	if err != nil {
		log.Error("Screenshot upload failed", zap.Error(err))
		return
	}
	paper.ScreenshotLink = link
	if err := s.DB.Model(paper).Update("screenshot_link", link).Error; err != nil {
		log.Error("Failed to store screenshot link", zap.Error(err))
	}
}

// rollback deletes the partially-built record and its sub-records so no
// orphan survives a fatal late-stage failure. Blob deletes are best-effort.
func (s *IngestService) rollback(ctx context.Context, paper *models.ArxivPaper, log *zap.Logger) {
	if err := s.DB.Where("paper_id = ?", paper.ID).Delete(&models.PaperImage{}).Error; err != nil {
		log.Error("Rollback: failed to delete image records", zap.Error(err))
	}
	if err := s.DB.Where("paper_id = ?", paper.ID).Delete(&models.PaperSource{}).Error; err != nil {
		log.Error("Rollback: failed to delete source records", zap.Error(err))
	}
	if err := s.DB.Delete(paper).Error; err != nil {
		log.Error("Rollback: failed to delete paper record", zap.Error(err))
	}

	for _, key := range []string{
		"pdfs/" + paper.ArxivID + ".pdf",
		"tar_sources/" + paper.ArxivID + ".tar.gz",
		"screenshots/" + paper.ArxivID + ".png",
	} {
		if err := s.Blobs.Delete(ctx, key); err != nil {
			log.Debug("Rollback: blob delete failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// lookupOrCreateSubject upserts on the short-code natural key. The unique
// constraint plus conflict-do-nothing keeps concurrent ingestions from
// creating duplicates.
func (s *IngestService) lookupOrCreateSubject(ref arxiv.SubjectRef) (*models.Subject, error) {
	subject := models.Subject{ShortName: ref.Code, FullName: ref.Name}
	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "short_name"}},
		DoNothing: true,
	}).Create(&subject).Error; err != nil {
		return nil, err
	}

	var out models.Subject
	if err := s.DB.Where("short_name = ?", ref.Code).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// lookupOrCreateAuthor resolves one author by name. Creation never fails
// outright: any enrichment problem falls back to a bare record with only
// the name populated. The second return reports the interesting-domain flag.
func (s *IngestService) lookupOrCreateAuthor(ctx context.Context, name string, scholarLookups bool, log *zap.Logger) (*models.Author, bool) {
	var existing models.Author
	err := s.DB.Where("name = ?", name).First(&existing).Error
	if err == nil {
		interesting := false
		if existing.EmailDomain != "" && s.domainIsInteresting(existing.EmailDomain) {
			interesting = true
			log.Info("Interesting paper: author email domain", zap.String("email_domain", existing.EmailDomain))
		}
		return &existing, interesting
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error("Author lookup failed", zap.String("author", name), zap.Error(err))
		return nil, false
	}

	author := models.Author{Name: name}
	interesting := false

	if scholarLookups {
		if result, err := s.Scholar.SearchAuthor(ctx, name); err != nil {
			log.Info("Author lookup on citation graph failed, creating bare record",
				zap.String("author", name), zap.Error(err))
		} else {
			author.Affiliation = result.Affiliation
			author.EmailDomain = result.EmailDomain
			author.ScholarID = result.AuthorID
			author.Citations = result.Citations
			if s.domainIsInteresting(result.EmailDomain) {
				interesting = true
				log.Info("Interesting paper: author email domain", zap.String("email_domain", result.EmailDomain))
			}
			log.Info("Author enriched",
				zap.String("author", name),
				zap.String("affiliation", result.Affiliation),
				zap.Int("citations", result.Citations))
		}
	}

	if err := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&author).Error; err != nil {
		log.Error("Author create failed", zap.String("author", name), zap.Error(err))
		return nil, false
	}

	var out models.Author
	if err := s.DB.Where("name = ?", name).First(&out).Error; err != nil {
		log.Error("Author re-read failed", zap.String("author", name), zap.Error(err))
		return nil, false
	}
	return &out, interesting
}

// domainIsInteresting substring-matches a domain against the allow-list.
func (s *IngestService) domainIsInteresting(domain string) bool {
	if domain == "" {
		return false
	}
	for _, interesting := range s.Config.InterestingDomainList() {
		if strings.Contains(domain, interesting) {
			return true
		}
	}
	return false
}

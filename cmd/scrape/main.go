package main

import (
	"context"
	"flag"
	"log"

	"arxiv-radar/config"
	"arxiv-radar/models"
	"arxiv-radar/services"
	"arxiv-radar/storage"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// One-shot batch scrape. The same pipeline the server schedules via cron,
// but invoked once from the command line.
func main() {
	numPapers := flag.Int("n", 0, "number of papers to scrape (default from config)")
	section := flag.String("s", "", "arXiv section to scrape from (default from config)")
	page := flag.String("p", "", "listing page to scrape from (default from config)")
	scholar := flag.Bool("gs", false, "enable citation-graph lookups")
	flag.Parse()

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	if *numPapers <= 0 {
		*numPapers = cfg.ScrapeNumPapers
	}
	if *section == "" {
		*section = cfg.ScrapeSection
	}
	if *page == "" {
		*page = cfg.ScrapePage
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(
		&models.Author{},
		&models.Subject{},
		&models.ArxivPaper{},
		&models.PaperImage{},
		&models.PaperSource{},
	); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	blobs, err := storage.NewS3Store(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	ingestService := services.NewIngestService(cfg, db, blobs, logging)

	stats, err := ingestService.IngestFromListing(context.Background(),
		*section, *page, *numPapers, *scholar)
	if err != nil {
		logging.Fatal("Batch ingest failed", zap.Error(err))
	}

	logging.Info("Batch ingest finished",
		zap.Int("committed", stats.Committed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("aborted", stats.Aborted),
		zap.Int("rolled_back", stats.RolledBack))
}

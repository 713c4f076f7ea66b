package main

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"arxiv-radar/config"
	"arxiv-radar/models"
	"arxiv-radar/services"
	"arxiv-radar/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	papersIngestedCounter prometheus.Counter
	papersSkippedCounter  prometheus.Counter
	ingestFailuresCounter prometheus.Counter
)

func init() {
	papersIngestedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_ingested_total",
			Help: "Total number of new papers committed to the database.",
		},
	)
	papersSkippedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_skipped_total",
			Help: "Total number of identifiers skipped because they already existed.",
		},
	)
	ingestFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Total number of identifiers that aborted or rolled back.",
		},
	)
	prometheus.MustRegister(papersIngestedCounter, papersSkippedCounter, ingestFailuresCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to papers database.")

	logging.Info("Running database auto-migration...")
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
	queryService := services.NewQueryService(db, logging)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	setupPaperRoutes(router, queryService)
	setupScrapeRoutes(router, cfg, ingestService)

	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.CronSchedule, func() {
		logging.Info("Running scheduled ingest job...")
		stats, err := ingestService.IngestFromListing(context.Background(),
			cfg.ScrapeSection, cfg.ScrapePage, cfg.ScrapeNumPapers, cfg.ScholarEnabled)
		recordStats(stats)
		if err != nil {
			logging.Error("Cron job failed", zap.Error(err))
		} else {
			logging.Info("Cron job completed", zap.Int("new_papers", stats.Committed))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupPaperRoutes configures the read API. Either returns the newest page
// or filters by free text (q), date preset (d) and offset (s).
func setupPaperRoutes(router *gin.Engine, queryService *services.QueryService) {
	router.GET("/api/papers", func(c *gin.Context) {
		searchQuery := c.Query("q")
		dateFilter := c.Query("d")

		offset := 0
		if raw := c.Query("s"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start item"})
				return
			}
			offset = parsed
		}

		rows, err := queryService.Search(searchQuery, dateFilter, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, rows)
	})
}

// setupScrapeRoutes configures the async batch trigger.
func setupScrapeRoutes(router *gin.Engine, cfg *config.Config, ingestService *services.IngestService) {
	router.POST("/scrape", func(c *gin.Context) {
		req := struct {
			NumPapers int    `json:"num_papers"`
			Section   string `json:"section"`
			Page      string `json:"page"`
			Scholar   *bool  `json:"scholar"`
		}{
			NumPapers: cfg.ScrapeNumPapers,
			Section:   cfg.ScrapeSection,
			Page:      cfg.ScrapePage,
		}
		// Body is optional; defaults come from config.
		_ = c.ShouldBindJSON(&req)

		scholarLookups := cfg.ScholarEnabled
		if req.Scholar != nil {
			scholarLookups = *req.Scholar
		}

		go func() {
			stats, err := ingestService.IngestFromListing(context.Background(),
				req.Section, req.Page, req.NumPapers, scholarLookups)
			recordStats(stats)
			if err != nil {
				ingestService.Logger.Error("Async ingest failed", zap.Error(err))
			} else {
				ingestService.Logger.Info("Async ingest completed",
					zap.Int("new_papers", stats.Committed))
			}
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Ingestion triggered."})
	})
}

func recordStats(stats services.BatchStats) {
	papersIngestedCounter.Add(float64(stats.Committed))
	papersSkippedCounter.Add(float64(stats.Skipped))
	ingestFailuresCounter.Add(float64(stats.Aborted + stats.RolledBack))
}

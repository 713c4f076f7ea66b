package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration parameters, loaded from environment variables.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort string `envconfig:"HTTP_PORT" default:"4242"`

	ArxivBaseURL string `envconfig:"ARXIV_BASE_URL" default:"https://arxiv.org"`

	// Defaults for the scheduled listing crawl.
	ScrapeSection   string `envconfig:"SCRAPE_SECTION" default:"cs.LG"`
	ScrapePage      string `envconfig:"SCRAPE_PAGE" default:"pastweek"`
	ScrapeNumPapers int    `envconfig:"SCRAPE_NUM_PAPERS" default:"500"`

	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 0 * * *"`

	OpenAIBaseURL   string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel     string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIMaxTokens int    `envconfig:"OPENAI_MAX_TOKENS" default:"512"`

	// Citation-graph lookups (disabled by default, like the CLI toggle).
	ScholarEnabled bool   `envconfig:"SCHOLAR_ENABLED" default:"false"`
	ScholarBaseURL string `envconfig:"SCHOLAR_BASE_URL" default:"https://api.semanticscholar.org/graph/v1"`
	ScholarAPIKey  string `envconfig:"SCHOLAR_API_KEY"`

	// Thresholds for the "interesting paper" diagnostic. Only logged.
	InterestingDomains         string `envconfig:"INTERESTING_DOMAINS" default:""`
	PaperCitationThreshold     int    `envconfig:"PAPER_CITATION_THRESHOLD" default:"1000"`
	AuthorCitationSumThreshold int    `envconfig:"AUTHOR_CITATION_SUM_THRESHOLD" default:"100000"`

	S3Key    string `envconfig:"S3_KEY" required:"true"`
	S3Secret string `envconfig:"S3_SECRET" required:"true"`
	S3URL    string `envconfig:"S3_URL" required:"true"`
	S3Region string `envconfig:"S3_REGION" required:"true"`
	S3Bucket string `envconfig:"S3_BUCKET" required:"true"`
}

// DSN returns the data source name for the PostgreSQL connection.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// InterestingDomainList splits INTERESTING_DOMAINS into a clean slice.
func (c *Config) InterestingDomainList() []string {
	var domains []string
	for _, d := range strings.Split(c.InterestingDomains, ",") {
		d = strings.TrimSpace(d)
		if d != "" {
			domains = append(domains, d)
		}
	}
	return domains
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

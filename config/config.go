package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`

	HTTPPort     string `envconfig:"HTTP_PORT" default:"4343"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`

	// Aktiver Tenant, für den synchronisiert wird (z.B. "HS", "NF", "EB", "CF").
	Tenant string `envconfig:"TENANT" required:"true"`

	// ClinicalTrials.gov API v2
	CtgovBaseURL    string `envconfig:"CTGOV_BASE_URL" default:"https://clinicaltrials.gov/api/v2"`
	CtgovPageSize   int    `envconfig:"CTGOV_PAGE_SIZE" default:"50"`
	CtgovMaxStudies int    `envconfig:"CTGOV_MAX_STUDIES" default:"500"`

	// OpenAI für die Patienten-Texte
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIKey     string `envconfig:"OPENAI_API_KEY" required:"true"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o"`

	// Wie lange ein unveränderter Trial als frisch gilt.
	FreshnessDays int `envconfig:"FRESHNESS_DAYS" default:"7"`

	SyncCronSchedule string `envconfig:"SYNC_CRON_SCHEDULE" default:"0 3 * * *"`

	// S3-Archiv für Roh-Snapshots der Studien
	StratoS3Key      string `envconfig:"STRATO_S3_KEY" required:"true"`
	StratoS3Secret   string `envconfig:"STRATO_S3_SECRET" required:"true"`
	StratoS3URL      string `envconfig:"STRATO_S3_URL" required:"true"`
	StratoS3Region   string `envconfig:"STRATO_S3_REGION" required:"true"`
	StratoS3Bucket   string `envconfig:"STRATO_S3_BUCKET" required:"true"`
	SnapshotsEnabled bool   `envconfig:"SNAPSHOTS_ENABLED" default:"true"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	err := envconfig.Process("", &c)
	return &c, err
}

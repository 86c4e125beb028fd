package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Taxonomy    TaxonomyConfig
	GroundTruth GroundTruthConfig
	Lexicon     LexiconConfig
	OCR         OCRConfig
	Queue       QueueConfig
	Download    DownloadConfig
	Watch       WatchConfig
}

// ServerConfig holds listener addresses for the daemon.
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration
}

// TaxonomyConfig points at an optional per-institution taxonomy file.
type TaxonomyConfig struct {
	File          string
	RequireFormat bool
}

// GroundTruthConfig selects the ground-truth store: a JSON file/dir, or a Postgres DSN.
type GroundTruthConfig struct {
	Path            string
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// LexiconConfig points at an optional SQLite synonym dictionary.
type LexiconConfig struct {
	DBPath string
}

// OCRConfig holds OCR collaborator configuration
type OCRConfig struct {
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// QueueConfig sizes the async job queue.
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
	WebhookTimeout time.Duration
}

// DownloadConfig bounds PDF downloads.
type DownloadConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

// WatchConfig enables the hot folder: letter files dropped under Dir are queued.
type WatchConfig struct {
	Dir         string
	InitialScan bool
	Debounce    time.Duration
	SkipHidden  bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        getEnv("LETTERS_HTTP_ADDR", ":3000"),
			GRPCAddr:        getEnv("LETTERS_GRPC_ADDR", ":3001"),
			ShutdownTimeout: getEnvAsDuration("LETTERS_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Taxonomy: TaxonomyConfig{
			File:          getEnv("TAXONOMY_FILE", ""),
			RequireFormat: getEnvAsBool("REQUIRE_INSTITUTION_FORMAT", false),
		},
		GroundTruth: GroundTruthConfig{
			Path:            getEnv("GROUND_TRUTH_PATH", ""),
			DSN:             getEnv("GROUND_TRUTH_DSN", ""),
			MaxConns:        getEnvAsInt32("GROUND_TRUTH_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("GROUND_TRUTH_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("GROUND_TRUTH_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("GROUND_TRUTH_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("GROUND_TRUTH_DIAL_TIMEOUT", 3*time.Second),
		},
		Lexicon: LexiconConfig{
			DBPath: getEnv("LEXICON_DB", ""),
		},
		OCR: OCRConfig{
			Pdftoppm:      getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:     getEnv("TESSERACT", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "ind"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 3*time.Minute),
			WebhookTimeout: getEnvAsDuration("WEBHOOK_TIMEOUT", 10*time.Second),
		},
		Download: DownloadConfig{
			Timeout:  getEnvAsDuration("DOWNLOAD_TIMEOUT", 60*time.Second),
			MaxBytes: getEnvAsInt64("DOWNLOAD_MAX_BYTES", 64<<20),
		},
		Watch: WatchConfig{
			Dir:         getEnv("LETTERS_WATCH_DIR", ""),
			InitialScan: getEnvAsBool("LETTERS_WATCH_INITIAL_SCAN", true),
			Debounce:    getEnvAsDuration("LETTERS_WATCH_DEBOUNCE", 2*time.Second),
			SkipHidden:  getEnvAsBool("LETTERS_WATCH_SKIP_HIDDEN", true),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "LETTERS_HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.GroundTruth.Path != "" && c.GroundTruth.DSN != "" {
		return NewAppError("CONFIG_ERROR", "set only one of GROUND_TRUTH_PATH and GROUND_TRUTH_DSN", ErrInvalidInput)
	}
	if c.OCR.DPI <= 0 {
		return NewAppError("CONFIG_ERROR", "OCR_DPI must be positive", ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string `yaml:"port"`

	// Pathstore sink. Completed recipes are written only when an API key is set.
	PathstoreURL    string `yaml:"pathstore_url"`
	PathstoreAPIKey string `yaml:"pathstore_api_key"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Worker pool
	WorkerCount        int `yaml:"worker_count"`
	MaxQueueSize       int `yaml:"max_queue_size"`
	MaxConcurrentStore int `yaml:"max_concurrent_store"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// OCR
	OCRLanguages    []string      `yaml:"ocr_languages"`
	OCRMaxDimension int           `yaml:"ocr_max_dimension"`
	OCRTimeout      time.Duration `yaml:"ocr_timeout"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		PathstoreURL:    envOr("PATHSTORE_URL", "http://localhost:8080"),
		PathstoreAPIKey: os.Getenv("PATHSTORE_API_KEY"),

		APIKey: os.Getenv("RECIPEOCR_API_KEY"),

		WorkerCount:        envInt("WORKER_COUNT", 4),
		MaxQueueSize:       envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentStore: envInt("MAX_CONCURRENT_STORE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		OCRLanguages:    envList("OCR_LANGUAGES", []string{"eng"}),
		OCRMaxDimension: envInt("OCR_MAX_DIMENSION", 2000),
		OCRTimeout:      envDuration("OCR_TIMEOUT", 60*time.Second),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}
	cfg.applyDefaults()
	return cfg
}

// LoadFile overlays the YAML file at path onto base. Keys missing from the
// file keep their value from base.
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read config: %w", err)
	}
	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = 4
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = 100
	}
	if c.MaxConcurrentStore <= 0 {
		c.MaxConcurrentStore = 4
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 20971520
	}
	if c.JobTTL <= 0 {
		c.JobTTL = 1 * time.Hour
	}
	if len(c.OCRLanguages) == 0 {
		c.OCRLanguages = []string{"eng"}
	}
	if c.OCRMaxDimension <= 0 {
		c.OCRMaxDimension = 2000
	}
	if c.OCRTimeout <= 0 {
		c.OCRTimeout = 60 * time.Second
	}
}

// SinkEnabled reports whether completed recipes are forwarded to pathstore.
func (c Config) SinkEnabled() bool {
	return c.PathstoreAPIKey != ""
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("RECIPEOCR_API_KEY is required")
	}
	if c.SinkEnabled() && c.PathstoreURL == "" {
		return fmt.Errorf("PATHSTORE_URL is required when PATHSTORE_API_KEY is set")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList splits a comma or plus separated value ("eng,fra" or "eng+fra").
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == '+' }) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

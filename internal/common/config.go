package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Server   ServerConfig   `koanf:"server"`
	OCR      OCRConfig      `koanf:"ocr"`
	Output   OutputConfig   `koanf:"output"`
	Worker   WorkerConfig   `koanf:"worker"`
	Ingest   IngestConfig   `koanf:"ingest"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	MaxConns        int32         `koanf:"max_conns"`
	MinConns        int32         `koanf:"min_conns"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `koanf:"max_conn_idle_time"`
	DialTimeout     time.Duration `koanf:"dial_timeout"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `koanf:"grpc_addr"`
	HTTPAddr string `koanf:"http_addr"`
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	PdfToTextBin  string        `koanf:"pdftotext_bin"`
	PdfToPpmBin   string        `koanf:"pdftoppm_bin"`
	TesseractBin  string        `koanf:"tesseract_bin"`
	TesseractLang string        `koanf:"tesseract_lang"`
	TessdataDir   string        `koanf:"tessdata_dir"`
	DPI           int           `koanf:"dpi"`
	MaxPages      int           `koanf:"max_pages"`
	AlwaysOCR     bool          `koanf:"always_ocr"`
	Timeout       time.Duration `koanf:"timeout"`
}

// OutputConfig holds writer destinations
type OutputConfig struct {
	Dir        string `koanf:"dir"`
	XLSXPath   string `koanf:"xlsx_path"`
	CSVPath    string `koanf:"csv_path"`
	DumpDir    string `koanf:"dump_dir"`
	WriteDumps bool   `koanf:"write_dumps"`
}

// WorkerConfig sizes the per-document worker pool
type WorkerConfig struct {
	Workers        int           `koanf:"workers"`
	QueueSize      int           `koanf:"queue_size"`
	ProcessTimeout time.Duration `koanf:"process_timeout"`
}

// IngestConfig configures the directory watcher
type IngestConfig struct {
	WatchDir string        `koanf:"watch_dir"`
	Debounce time.Duration `koanf:"debounce"`
	// Roots bounds the paths API callers may submit; empty falls back to WatchDir.
	Roots []string `koanf:"roots"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "file:bok.db?_pragma=busy_timeout(5000)"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8081"),
		},
		OCR: OCRConfig{
			PdfToTextBin:  getEnv("PDFTOTEXT_BIN", "pdftotext"),
			PdfToPpmBin:   getEnv("PDFTOPPM_BIN", "pdftoppm"),
			TesseractBin:  getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			DPI:           getEnvAsInt("OCR_DPI", 150),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 5),
			AlwaysOCR:     getEnvAsBool("OCR_ALWAYS", true),
			Timeout:       getEnvAsDuration("OCR_TIMEOUT", 2*time.Minute),
		},
		Output: OutputConfig{
			Dir:        getEnv("OUTPUT_DIR", "./output"),
			XLSXPath:   getEnv("OUTPUT_XLSX", ""),
			CSVPath:    getEnv("OUTPUT_CSV", ""),
			DumpDir:    getEnv("OUTPUT_DUMP_DIR", ""),
			WriteDumps: getEnvAsBool("OUTPUT_WRITE_DUMPS", true),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("WORKERS", 4),
			QueueSize:      getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("PROCESS_TIMEOUT", 5*time.Minute),
		},
		Ingest: IngestConfig{
			WatchDir: getEnv("WATCH_DIR", ""),
			Roots:    getEnvAsList("INGEST_ROOTS"),
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 750*time.Millisecond),
		},
	}
}

const envPrefix = "BOK_"

// LoadConfigFile layers a YAML file and BOK_-prefixed environment variables
// over LoadConfig. A missing file is not an error.
//
//	BOK_OCR_DPI        -> ocr.dpi
//	BOK_SERVER_HTTP_ADDR -> server.http_addr
func LoadConfigFile(path string) (*Config, error) {
	cfg := LoadConfig()
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// envKey maps BOK_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
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

func getEnvAsList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
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

// IntakeRoots returns the directories API callers may process files from.
func (c *Config) IntakeRoots() []string {
	if len(c.Ingest.Roots) > 0 {
		return c.Ingest.Roots
	}
	if c.Ingest.WatchDir != "" {
		return []string{c.Ingest.WatchDir}
	}
	return nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("database.driver", c.Database.Driver, Required, OneOf("sqlite", "postgres")).
		Field("database.dsn", c.Database.DSN, Required).
		Field("ocr.dpi", c.OCR.DPI, Between(72, 600)).
		Field("ocr.max_pages", c.OCR.MaxPages, Between(1, 500)).
		Field("worker.workers", c.Worker.Workers, Between(1, 256)).
		Field("worker.queue_size", c.Worker.QueueSize, Between(1, 1<<16))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

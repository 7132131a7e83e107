package common

import (
	"os"
	"runtime"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	PDF      PDFConfig
	Extract  ExtractConfig
	Checks   CheckConfig
}

// DatabaseConfig holds database-related configuration. The DSN scheme selects
// the driver: postgres:// uses pgx, anything else is treated as a sqlite path.
type DatabaseConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// OCRConfig holds OCR-related configuration.
type OCRConfig struct {
	Language    string
	TessdataDir string
	PSM         int // page segmentation mode; 6 is good for uniform block of text
}

// PDFConfig holds the poppler tool paths for PDF text extraction.
type PDFConfig struct {
	Pdftotext string
	Pdftoppm  string
	// DPI for rasterizing scanned pages before OCR.
	DPI int
	// MaxPages caps how many rasterized pages go through OCR; 0 is unlimited.
	MaxPages int
	// MinNativeChars is the threshold below which a page's native text layer
	// is considered absent and the raster/OCR fallback kicks in.
	MinNativeChars int
}

// ExtractConfig tunes the document extraction stage.
type ExtractConfig struct {
	// MinOCRConfidence rejects image fields recognized below this confidence.
	MinOCRConfidence float32
	Workers          int
	QueueSize        int
	Timeout          time.Duration
	// PatternsFile optionally points at a YAML file overriding identifier
	// patterns per family.
	PatternsFile string
}

// CheckConfig tunes cross-validation behavior.
type CheckConfig struct {
	// RevisionStrict escalates same-letter revision differences (F vs F2)
	// from WARNING to CRITICAL.
	RevisionStrict bool
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:         getEnv("DB_URL", ""),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		OCR: OCRConfig{
			Language:    getEnv("OCR_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("OCR_PSM", 6),
		},
		PDF: PDFConfig{
			Pdftotext:      getEnv("PDFTOTEXT_PATH", "pdftotext"),
			Pdftoppm:       getEnv("PDFTOPPM_PATH", "pdftoppm"),
			DPI:            getEnvAsInt("PDF_OCR_DPI", 300),
			MaxPages:       getEnvAsInt("PDF_OCR_MAX_PAGES", 20),
			MinNativeChars: getEnvAsInt("PDF_MIN_NATIVE_CHARS", 64),
		},
		Extract: ExtractConfig{
			MinOCRConfidence: getEnvAsFloat32("EXTRACT_MIN_OCR_CONFIDENCE", 0.4),
			Workers:          getEnvAsInt("EXTRACT_WORKERS", runtime.GOMAXPROCS(0)),
			QueueSize:        getEnvAsInt("EXTRACT_QUEUE_SIZE", 64),
			Timeout:          getEnvAsDuration("EXTRACT_TIMEOUT", 2*time.Minute),
			PatternsFile:     getEnv("PATTERNS_FILE", ""),
		},
		Checks: CheckConfig{
			RevisionStrict: getEnvAsBool("CHECK_REVISION_STRICT", false),
		},
	}
}

// Helper functions for environment variable parsing.
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.Extract.MinOCRConfidence < 0 || c.Extract.MinOCRConfidence > 1 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MIN_OCR_CONFIDENCE must be in [0,1]", ErrInvalidInput)
	}
	if c.Extract.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

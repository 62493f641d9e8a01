package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"case_strategy_editor/services/pagination"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	UploadDir   string
	// Other
	AllowedOrigins []string
	AppURL         string
	// Headless browser
	ChromePath       string
	BrowserRemoteURL string
	RenderEngine     string // chromedp, rod
	ExportTimeout    time.Duration
	FontStylesheet   string
	// Pagination
	FrameInterval time.Duration
	GeometryFile  string
	Geometry      pagination.Geometry
	// Export archive
	ArchiveExports  bool
	ExportRetention time.Duration
	// Cloudflare R2 Storage
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicURL       string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "db/app.db"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		UploadDir:         getEnv("UPLOAD_DIR", "static/uploads"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		AppURL:            getEnv("APP_URL", "http://localhost:8080"),
		ChromePath:        getEnv("CHROME_PATH", ""),
		BrowserRemoteURL:  getEnv("BROWSER_REMOTE_URL", ""),
		RenderEngine:      getEnv("RENDER_ENGINE", "chromedp"),
		ExportTimeout:     getEnvDuration("EXPORT_TIMEOUT", 60*time.Second),
		FontStylesheet:    getEnv("FONT_STYLESHEET_URL", "https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap"),
		FrameInterval:     getEnvDuration("FRAME_INTERVAL", pagination.DefaultFrameInterval),
		GeometryFile:      getEnv("GEOMETRY_FILE", ""),
		ArchiveExports:    getEnvBool("ARCHIVE_EXPORTS", false),
		ExportRetention:   getEnvDuration("EXPORT_RETENTION", 30*24*time.Hour),
		R2AccountID:       getEnv("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2BucketName:      getEnv("R2_BUCKET_NAME", ""),
		R2PublicURL:       getEnv("R2_PUBLIC_URL", ""),
	}

	geometry, err := LoadGeometry(cfg.GeometryFile)
	if err != nil {
		log.Fatalf("[CRITICAL] %v", err)
	}
	cfg.Geometry = geometry
	return cfg
}

// LoadGeometry returns the default page geometry, overridden by the YAML file
// at path when one is given. The result is validated so the editor surface
// and the print bridge can never disagree silently.
func LoadGeometry(path string) (pagination.Geometry, error) {
	g := pagination.DefaultGeometry()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return g, fmt.Errorf("failed to read geometry file: %w", err)
		}
		if err := yaml.Unmarshal(data, &g); err != nil {
			return g, fmt.Errorf("failed to parse geometry file %s: %w", path, err)
		}
		log.Printf("[INFO] Page geometry loaded from %s", path)
	}
	if err := g.Validate(); err != nil {
		return g, err
	}
	return g, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Printf("Using default value for %s: %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARNING] Invalid integer for %s: %q, using %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

// getEnvDuration accepts Go duration strings ("45s") or a plain number of
// seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs := getEnvInt(key, -1); secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	log.Printf("[WARNING] Invalid duration for %s: %q, using %s", key, value, defaultValue)
	return defaultValue
}

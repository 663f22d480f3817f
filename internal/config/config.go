package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the core runtime configuration for the service.
// Values are primarily sourced from environment variables, with
// sensible defaults where appropriate. See .env.example.
type Config struct {
	ListenAddr string

	UploadDir    string
	ProcessedDir string

	// StoreBackend selects the remote store: auto, firestore, postgres or
	// local. auto prefers Firestore when credentials exist, then PostgreSQL.
	StoreBackend string

	DatabaseURL string

	FirebaseProjectID       string
	FirebaseCredentialsFile string
	FirebaseClientEmail     string
	FirebasePrivateKey      string
	FirestoreCollection     string

	BatchSize int
	ListLimit int
	// RemoteUpsert keys remote records by hotel, date and source file so that
	// re-ingesting a file overwrites its samples.
	RemoteUpsert   bool
	RemoteTimeout  time.Duration
	HealthInterval time.Duration

	LandingAIKey   string
	LandingAIURL   string
	ExtractTimeout time.Duration

	MaxUploadFiles int
	CORSOrigins    []string

	LogLevel  string
	LogFormat string
	LogOutput string
	LogPath   string
}

// Load reads configuration from environment variables and applies defaults.
func Load() *Config {
	return &Config{
		ListenAddr:   getenv("APP_LISTEN_ADDR", ":8080"),
		UploadDir:    getenv("APP_UPLOAD_DIR", "uploads"),
		ProcessedDir: getenv("APP_PROCESSED_DIR", "processed-data"),
		StoreBackend: strings.ToLower(getenv("APP_STORE_BACKEND", "auto")),

		DatabaseURL: os.Getenv("APP_DATABASE_URL"),

		FirebaseProjectID:       os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseCredentialsFile: os.Getenv("FIREBASE_CREDENTIALS_FILE"),
		FirebaseClientEmail:     os.Getenv("FIREBASE_CLIENT_EMAIL"),
		FirebasePrivateKey:      os.Getenv("FIREBASE_PRIVATE_KEY"),
		FirestoreCollection:     getenv("APP_FIRESTORE_COLLECTION", "hotel_metrics"),

		BatchSize:      getenvInt("APP_BATCH_SIZE", 500),
		ListLimit:      getenvInt("APP_LIST_LIMIT", 500),
		RemoteUpsert:   getenvBool("APP_REMOTE_UPSERT", false),
		RemoteTimeout:  getenvDuration("APP_REMOTE_TIMEOUT", 15*time.Second),
		HealthInterval: getenvDuration("APP_HEALTH_INTERVAL", time.Minute),

		LandingAIKey:   os.Getenv("LANDING_AI_API_KEY"),
		LandingAIURL:   os.Getenv("LANDING_AI_URL"),
		ExtractTimeout: getenvDuration("APP_EXTRACT_TIMEOUT", 30*time.Second),

		MaxUploadFiles: getenvInt("APP_MAX_UPLOAD_FILES", 20),
		CORSOrigins:    splitList(os.Getenv("APP_CORS_ORIGINS")),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
		LogOutput: getenv("LOG_OUTPUT", "stdout"),
		LogPath:   getenv("LOG_PATH", "logs/hotelmetrics.log"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getenvInt returns def unless key holds a positive integer.
func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getenvDuration accepts Go durations ("30s") or a bare number of seconds.
func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

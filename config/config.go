package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultCapturesSubDir = "captures"
)

const (
	defaultArchiveQueueSize   = 100
	defaultNumArchiveWorkers  = 2
	defaultMinFeatureElements = 100
	defaultRatioTestThreshold = 0.75
	defaultMaxEnrollCaptures  = 5
	defaultSessionTTLHours    = 24
	defaultSnapshotMaxSize    = 800
	defaultListenAddr         = ":8080"
	defaultWebcamDeviceID     = 0
)

type Config struct {
	// server
	ListenAddr     string
	AllowedOrigins []string

	// database path
	DatabasePath string

	// capture archive storage configuration
	MediaStoragePath string // primary root for archived capture snapshots
	CapturesPath     string // full-calculated path for snapshots

	// biometric matching settings
	AcceptThreshold       int // 0 selects the per-detector default
	MinFeatureElements    int
	RatioTestThreshold    float64
	MaxEnrollmentCaptures int
	DetectorStrategy      string // "auto", "primary" or "fallback"

	// kiosk webcam acquisition
	WebcamEnabled  bool
	WebcamDeviceID int

	// archive worker settings
	ArchiveQueueSize  int
	NumArchiveWorkers int
	SnapshotMaxSize   int

	// bootstrap operator account
	AdminUsername   string
	AdminPassword   string
	SessionTTLHours int
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val <= 0 || val >= 1 {
		log.Printf("Warning: Invalid %s '%s'. Using default %g. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Invalid %s '%s'. Using default %t. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dbPath := getEnvOrDefault("DATABASE_PATH", "fingerauth.db")

	mediaStorage := getEnvOrDefault("CAPTURE_STORAGE_PATH", filepath.Join(".", "capture_storage"))
	absMediaStorage, err := filepath.Abs(mediaStorage)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for capture storage '%s': %w", mediaStorage, err)
	}

	capturesSubDir := getEnvOrDefault("CAPTURES_SUBDIR", DefaultCapturesSubDir)
	absCapturesPath := filepath.Join(absMediaStorage, capturesSubDir)

	detector := strings.ToLower(getEnvOrDefault("DETECTOR", "auto"))
	switch detector {
	case "auto", "primary", "fallback":
	default:
		log.Printf("Warning: Invalid DETECTOR '%s'. Using 'auto'.", detector)
		detector = "auto"
	}

	origins := strings.Split(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		ListenAddr:            getEnvOrDefault("LISTEN_ADDR", defaultListenAddr),
		AllowedOrigins:        origins,
		DatabasePath:          dbPath,
		MediaStoragePath:      absMediaStorage,
		CapturesPath:          absCapturesPath,
		AcceptThreshold:       getEnvIntOrDefault("ACCEPT_THRESHOLD", 0),
		MinFeatureElements:    getEnvIntOrDefault("MIN_FEATURE_ELEMENTS", defaultMinFeatureElements),
		RatioTestThreshold:    getEnvFloatOrDefault("RATIO_TEST_THRESHOLD", defaultRatioTestThreshold),
		MaxEnrollmentCaptures: getEnvIntOrDefault("MAX_ENROLLMENT_CAPTURES", defaultMaxEnrollCaptures),
		DetectorStrategy:      detector,
		WebcamEnabled:         getEnvBoolOrDefault("WEBCAM_ENABLED", false),
		WebcamDeviceID:        getEnvIntOrDefault("WEBCAM_DEVICE_ID", defaultWebcamDeviceID),
		ArchiveQueueSize:      getEnvIntOrDefault("ARCHIVE_QUEUE_SIZE", defaultArchiveQueueSize),
		NumArchiveWorkers:     getEnvIntOrDefault("NUM_ARCHIVE_WORKERS", defaultNumArchiveWorkers),
		SnapshotMaxSize:       getEnvIntOrDefault("SNAPSHOT_MAX_SIZE", defaultSnapshotMaxSize),
		AdminUsername:         getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:         os.Getenv("ADMIN_PASSWORD"),
		SessionTTLHours:       getEnvIntOrDefault("SESSION_TTL_HOURS", defaultSessionTTLHours),
	}

	return cfg, nil
}

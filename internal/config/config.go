package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ModelDir       string
	Addr           string
	DBPath         string // empty disables scan history
	Retention      time.Duration
	AllowedOrigins []string
	WriteLimit     int // scan submissions per client and minute

	MQTT MQTTConfig

	ScanFile  string // one-shot mode when set
	PDFPath   string
	TraceFile string
	Debug     bool
}

// MQTTConfig configures the broker bridge. An empty Broker disables it.
type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	ScanTopic   string
	ResultTopic string
}

// Enabled reports whether a broker is configured.
func (m MQTTConfig) Enabled() bool {
	return m.Broker != ""
}

// OneShot reports whether a single scan file is classified instead of running the service.
func (c *Config) OneShot() bool {
	return c.ScanFile != ""
}

// Load reads .env from the working directory, then NETTRUST_* environment
// variables, then command line flags. Later sources take precedence.
func Load() (*Config, error) {
	if err := loadEnvFile(".env"); err != nil {
		return nil, err
	}
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args over the environment.
func LoadArgs(args []string) (*Config, error) {
	cfg := &Config{}

	// Defaults and Environment Variables
	origins := getEnv("NETTRUST_ALLOWED_ORIGINS", "")
	cfg.ModelDir = getEnv("NETTRUST_MODEL_DIR", "model")
	cfg.Addr = getEnv("NETTRUST_ADDR", ":8080")
	cfg.DBPath = getEnv("NETTRUST_DB", getDefaultDBPath())
	cfg.Retention = getEnvDuration("NETTRUST_RETENTION", 30*24*time.Hour)
	cfg.WriteLimit = getEnvInt("NETTRUST_WRITE_LIMIT", 30)
	cfg.MQTT = MQTTConfig{
		Broker:      getEnv("NETTRUST_MQTT_BROKER", ""),
		ClientID:    getEnv("NETTRUST_MQTT_CLIENT_ID", "nettrust"),
		Username:    getEnv("NETTRUST_MQTT_USERNAME", ""),
		Password:    getEnv("NETTRUST_MQTT_PASSWORD", ""),
		ScanTopic:   getEnv("NETTRUST_MQTT_SCAN_TOPIC", "nettrust/+/scan"),
		ResultTopic: getEnv("NETTRUST_MQTT_RESULT_TOPIC", "nettrust/{device_id}/result"),
	}
	cfg.TraceFile = getEnv("NETTRUST_TRACE_FILE", "")
	cfg.Debug = getEnvBool("NETTRUST_DEBUG", false)

	// Command Line Flags (Override Env)
	fl := flag.NewFlagSet("nettrust", flag.ContinueOnError)
	fl.SetOutput(io.Discard)
	fl.StringVar(&cfg.ModelDir, "model", cfg.ModelDir, "Directory holding the model assets")
	fl.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP server address")
	fl.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to SQLite scan history (empty to disable)")
	fl.DurationVar(&cfg.Retention, "retention", cfg.Retention, "Drop scans older than this at startup (0 keeps everything)")
	fl.StringVar(&origins, "origins", origins, "Allowed WebSocket origins (comma separated)")
	fl.IntVar(&cfg.WriteLimit, "write-limit", cfg.WriteLimit, "Scan submissions allowed per client and minute")
	fl.StringVar(&cfg.MQTT.Broker, "mqtt", cfg.MQTT.Broker, "MQTT broker URL (empty to disable)")
	fl.StringVar(&cfg.MQTT.ScanTopic, "mqtt-scan-topic", cfg.MQTT.ScanTopic, "MQTT topic carrying scans")
	fl.StringVar(&cfg.MQTT.ResultTopic, "mqtt-result-topic", cfg.MQTT.ResultTopic, "MQTT topic for results ({device_id} is substituted)")
	fl.StringVar(&cfg.ScanFile, "scan", "", "Classify a saved scan file and exit")
	fl.StringVar(&cfg.PDFPath, "pdf", "", "Write a PDF report of the scan (requires -scan)")
	fl.StringVar(&cfg.TraceFile, "trace", cfg.TraceFile, "Write OpenTelemetry spans to this file")
	fl.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Enable verbose debug logging")

	if err := fl.Parse(args); err != nil {
		return nil, err
	}

	cfg.AllowedOrigins = parseList(origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects inconsistent settings.
func (c *Config) Validate() error {
	if c.ModelDir == "" {
		return errors.New("model directory is required")
	}
	if c.PDFPath != "" && c.ScanFile == "" {
		return errors.New("-pdf requires -scan")
	}
	if c.WriteLimit <= 0 {
		return fmt.Errorf("write limit must be positive, got %d", c.WriteLimit)
	}
	if c.Retention < 0 {
		return fmt.Errorf("retention must not be negative, got %s", c.Retention)
	}
	if c.MQTT.Enabled() && c.MQTT.ScanTopic == "" {
		return errors.New("MQTT scan topic is required when a broker is set")
	}
	return nil
}

// loadEnvFile applies a dotenv file without overriding variables already set.
// A missing file is not an error.
func loadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func parseList(s string) []string {
	var items []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

// getDefaultDBPath returns ~/.nettrust/nettrust.db, creating the directory.
func getDefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("Could not get user home directory, using current dir", "error", err)
		return "nettrust.db"
	}

	dir := filepath.Join(home, ".nettrust")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Warn("Could not create .nettrust directory, using current dir", "error", err)
		return "nettrust.db"
	}

	return filepath.Join(dir, "nettrust.db")
}

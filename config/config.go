package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultCORSOrigin = "http://localhost:5173"

type Config struct {
	Environment string
	ServerPort  string
	LogMode     string

	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret   string
	CORSOrigins []string

	QuestionBankPath string
	QuestionTime     int
	UnlockAllLevels  bool

	PersistQueueSize int
	PersistTimeout   time.Duration

	// SessionIdleTimeout is how long an unused quiz session is kept in memory.
	SessionIdleTimeout time.Duration

	// SeedDemoData fills an empty database with a demo class. Ignored in production.
	SeedDemoData bool
	DemoPassword string
}

// Load reads the environment, after merging an optional .env file.
func Load() (*Config, error) {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		ServerPort:       getEnv("PORT", "8080"),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           getEnv("DB_NAME", "quiz_app"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		QuestionBankPath: os.Getenv("QUESTION_BANK_PATH"),
		CORSOrigins:      splitList(getEnv("CORS_ORIGINS", defaultCORSOrigin)),
		DemoPassword:     getEnv("SEED_DEMO_PASSWORD", "password123"),
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{defaultCORSOrigin}
	}
	cfg.LogMode = getEnv("LOG_MODE", cfg.Environment)

	var err error
	if cfg.DBPort, err = getInt("DB_PORT", 5432); err != nil {
		return nil, err
	}
	if cfg.QuestionTime, err = getInt("QUESTION_TIME_SECONDS", 60); err != nil {
		return nil, err
	}
	if cfg.PersistQueueSize, err = getInt("PERSIST_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	timeout, err := getInt("PERSIST_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}
	cfg.PersistTimeout = time.Duration(timeout) * time.Second
	idle, err := getInt("SESSION_IDLE_TIMEOUT_MINUTES", 120)
	if err != nil {
		return nil, err
	}
	cfg.SessionIdleTimeout = time.Duration(idle) * time.Minute
	if cfg.UnlockAllLevels, err = getBool("QUIZ_UNLOCK_ALL", false); err != nil {
		return nil, err
	}
	if cfg.SeedDemoData, err = getBool("SEED_DEMO_DATA", false); err != nil {
		return nil, err
	}
	if cfg.IsProduction() {
		cfg.SeedDemoData = false
	}

	if cfg.DBPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.QuestionTime <= 0 || cfg.PersistQueueSize <= 0 || timeout <= 0 || idle <= 0 {
		return nil, fmt.Errorf("QUESTION_TIME_SECONDS, PERSIST_QUEUE_SIZE, PERSIST_TIMEOUT_SECONDS and SESSION_IDLE_TIMEOUT_MINUTES must be positive")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

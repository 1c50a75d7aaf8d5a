package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	GroqAPIKey            string
	GoogleCredentialsFile string

	// Optional with defaults
	DBPath             string
	HTTPPort           int
	BaseURL            string
	Timezone           string
	Model              string
	LLMBaseURL         string
	LLMTemperature     float64
	LLMTimeout         time.Duration
	CalendarTimeout    time.Duration
	ReminderLeadMin    int
	DigestCron         string
	WhatsAppDBPath     string
}

func LoadFromEnv() *Config {
	cfg := &Config{
		// Required
		GroqAPIKey:            os.Getenv("GROQ_API_KEY"),
		GoogleCredentialsFile: getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", "./credentials.json"),

		// Optional with defaults
		DBPath:          getEnvOrDefault("NEURA_DB_PATH", "./neura.db"),
		HTTPPort:        getEnvAsIntOrDefault("NEURA_HTTP_PORT", 8080),
		BaseURL:         getEnvOrDefault("NEURA_BASE_URL", "http://localhost:8080"),
		Timezone:        getEnvOrDefault("NEURA_TIMEZONE", "Asia/Kolkata"),
		Model:           getEnvOrDefault("NEURA_MODEL", "llama-3.3-70b-versatile"),
		LLMBaseURL:      getEnvOrDefault("NEURA_LLM_BASE_URL", ""),
		LLMTemperature:  getEnvAsFloatOrDefault("NEURA_LLM_TEMPERATURE", 0.15),
		LLMTimeout:      getEnvAsDurationOrDefault("NEURA_LLM_TIMEOUT", 30*time.Second),
		CalendarTimeout: getEnvAsDurationOrDefault("NEURA_CALENDAR_TIMEOUT", 30*time.Second),
		ReminderLeadMin: getEnvAsIntOrDefault("NEURA_REMINDER_LEAD_MINUTES", 10),
		DigestCron:      getEnvOrDefault("NEURA_DIGEST_CRON", ""),
		WhatsAppDBPath:  getEnvOrDefault("NEURA_WHATSAPP_DB_PATH", "./whatsapp.db"),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

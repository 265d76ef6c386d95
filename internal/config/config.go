package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
	Chat     ChatConfig
	Tts      TtsConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	ElevenLabs   string
}

// ChatConfig carries the rate-limit and upstream policy knobs for the chat
// subsystem. Defaults mirror the free-tier limits of the original deployment.
type ChatConfig struct {
	MaxSessionMessages int
	Cooldown           time.Duration
	RequestTimeout     time.Duration
	MaxRetries         int
	BaseBackoff        time.Duration
	ActivityTopic      string
}

type TtsConfig struct {
	VoiceID        string
	DailyLimit     int
	RequestTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			ElevenLabs:   getEnv("ELEVENLABS_API_KEY", ""),
		},
		Chat: ChatConfig{
			MaxSessionMessages: getEnvAsInt("CHAT_MAX_SESSION_MESSAGES", 50),
			Cooldown:           getEnvAsDuration("CHAT_COOLDOWN", 3*time.Second),
			RequestTimeout:     getEnvAsDuration("CHAT_REQUEST_TIMEOUT", 45*time.Second),
			MaxRetries:         getEnvAsInt("CHAT_MAX_RETRIES", 3),
			BaseBackoff:        getEnvAsDuration("CHAT_BASE_BACKOFF", 2*time.Second),
			ActivityTopic:      getEnv("CHAT_ACTIVITY_TOPIC_NAME", "CHAT_ACTIVITY"),
		},
		Tts: TtsConfig{
			VoiceID:        getEnv("ELEVENLABS_VOICE_ID", ""),
			DailyLimit:     getEnvAsInt("TTS_DAILY_LIMIT", 4),
			RequestTimeout: getEnvAsDuration("TTS_REQUEST_TIMEOUT", 20*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Env       string
	Port      string
	SecretKey string

	QuestionBankURL     string
	QuestionBankTimeout time.Duration
	DefaultQuestions    int
	MaxQuestions        int

	SessionBackend    string
	SessionTTL        time.Duration
	SessionMemorySize int
	CookieSecure      bool

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI      string
	MongoDatabase string

	RabbitMQURI      string
	RabbitMQExchange string

	ConsulAddress  string
	ServiceName    string
	ServiceID      string
	ServiceAddress string

	AllowOrigins []string
}

// Load reads .env (if present), the environment and then the optional TOML
// file at path. Values set in the file win over the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using system env")
	}

	cfg := New()
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		fc.apply(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func New() *Config {
	redisAddr := getEnv("REDIS_ADDR", "")
	backend := getEnv("SESSION_BACKEND", "")
	if backend == "" {
		backend = BackendMemory
		if redisAddr != "" {
			backend = BackendRedis
		}
	}
	serviceName := getEnv("SERVICE_NAME", "quiz-app")

	return &Config{
		Env:       getEnv("ENV", "local"),
		Port:      getEnv("PORT", "5000"),
		SecretKey: getEnv("SECRET_KEY", ""),

		QuestionBankURL:     getEnv("QUESTION_BANK_URL", "https://opentdb.com"),
		QuestionBankTimeout: getDuration("QUESTION_BANK_TIMEOUT", 10*time.Second),
		DefaultQuestions:    getInt("DEFAULT_QUESTIONS", 5),
		MaxQuestions:        getInt("MAX_QUESTIONS", 50),

		SessionBackend:    backend,
		SessionTTL:        getDuration("SESSION_TTL", 24*time.Hour),
		SessionMemorySize: getInt("SESSION_MEMORY_SIZE", 10000),
		CookieSecure:      getBool("COOKIE_SECURE", false),

		RedisAddr:     redisAddr,
		RedisPassword: getEnv("REDIS_PWD", ""),
		RedisDB:       getInt("REDIS_DB", 0),

		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "quiz_app"),

		RabbitMQURI:      getEnv("RABBITMQ_URI", ""),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "quiz.events"),

		ConsulAddress:  getEnv("CONSUL_ADDRESS", ""),
		ServiceName:    serviceName,
		ServiceID:      serviceName + "-" + getEnv("HOSTNAME", "1"),
		ServiceAddress: getEnv("SERVICE_ADDRESS", "quiz-app"),

		AllowOrigins: splitList(getEnv("ALLOW_ORIGINS", "http://localhost:3000")),
	}
}

func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMemory:
		if c.SessionMemorySize <= 0 {
			return fmt.Errorf("SESSION_MEMORY_SIZE must be positive, got %d", c.SessionMemorySize)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("session backend %q requires REDIS_ADDR", c.SessionBackend)
		}
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("session backend %q requires MONGO_URI", c.SessionBackend)
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.SessionBackend)
	}
	if c.DefaultQuestions <= 0 {
		return fmt.Errorf("DEFAULT_QUESTIONS must be positive, got %d", c.DefaultQuestions)
	}
	if c.MaxQuestions < c.DefaultQuestions {
		return fmt.Errorf("MAX_QUESTIONS (%d) is below DEFAULT_QUESTIONS (%d)", c.MaxQuestions, c.DefaultQuestions)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.QuestionBankTimeout <= 0 {
		return fmt.Errorf("QUESTION_BANK_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("Invalid integer in env, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("Invalid boolean in env, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("Invalid duration in env, using default", "key", key, "value", raw, "default", fallback)
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

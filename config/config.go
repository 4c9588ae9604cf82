package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	DBDriver   string
	DBDSN      string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret string
	JWTTTL    time.Duration

	CORSOrigin         string
	RateLimitPerSecond int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL   string
	RabbitMQQueue string

	DepositPolicyFile string
	PaymentServerKey  string

	// SeatingWindow narrows availability to reservations within this distance
	// of the requested time. Zero blocks a table for the whole day.
	SeatingWindow       time.Duration
	DefaultWaitMinutes  int
	SlotLockWaitTimeout time.Duration
}

// Load membaca konfigurasi dari environment (setelah godotenv.Load di main).
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "mysql")),
		DBDSN:      os.Getenv("DB_DSN"),
		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     getEnv("DB_NAME", "table_reservation"),

		JWTSecret: os.Getenv("JWT_SECRET"),
		JWTTTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		CORSOrigin:         getEnv("CORS_ORIGIN", "http://127.0.0.1:5500"),
		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 50),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RabbitMQURL:   os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue: getEnv("RABBITMQ_QUEUE", "reservation.events"),

		DepositPolicyFile: os.Getenv("DEPOSIT_POLICY_FILE"),
		PaymentServerKey:  os.Getenv("PAYMENT_SERVER_KEY"),

		SeatingWindow:       time.Duration(getEnvInt("SEATING_WINDOW_MINUTES", 0)) * time.Minute,
		DefaultWaitMinutes:  getEnvInt("WAITLIST_DEFAULT_WAIT_MINUTES", 15),
		SlotLockWaitTimeout: time.Duration(getEnvInt("SLOT_LOCK_WAIT_MS", 3000)) * time.Millisecond,
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

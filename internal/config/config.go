// Package config loads application configuration from the environment
// (and an optional .env file) into a typed Config struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Operator describes a single upstream SMS operator endpoint.
type Operator struct {
	Name     string
	URL      string
	Priority int
	Timeout  time.Duration
}

type Config struct {
	App struct {
		Name string
		Env  string
	}

	API struct {
		Host   string
		Port   string
		Prefix string
	}

	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	NATS struct {
		URL           string
		Stream        string
		MaxAckPending int
		MaxDeliver    int
	}

	Operators []Operator

	Outbox struct {
		PollInterval time.Duration
		BatchSize    int
	}

	Worker struct {
		ExpressWorkers int
		RegularWorkers int
	}

	Settlement struct {
		Interval     time.Duration
		BatchTimeout time.Duration
		BatchSize    int
		LockTTL      time.Duration
	}

	LogLevel string
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.App.Name = getEnv("APP_NAME", "sms-gateway")
	cfg.App.Env = getEnv("APP_ENV", "development")

	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("API_PORT", "8080")
	cfg.API.Prefix = getEnv("API_PREFIX", "/api/v1")

	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "root")
	cfg.DB.Password = getEnv("DB_PASSWORD", "123456")
	cfg.DB.Name = getEnv("DB_NAME", "sms_gateway")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "redis:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	cfg.NATS.URL = getEnv("NATS_URL", "nats://nats:4222")
	cfg.NATS.Stream = getEnv("NATS_STREAM", "SMS_GATEWAY")
	cfg.NATS.MaxAckPending = getInt("NATS_MAX_ACK_PENDING", 1000)
	cfg.NATS.MaxDeliver = getInt("NATS_MAX_DELIVER", 3)

	cfg.Operators = parseOperators(getEnv("OPERATORS", defaultOperatorsEnv))

	cfg.Outbox.PollInterval = getDuration("OUTBOX_POLL_INTERVAL", 500*time.Millisecond)
	cfg.Outbox.BatchSize = getInt("OUTBOX_BATCH_SIZE", 200)

	cfg.Worker.ExpressWorkers = getInt("WORKER_EXPRESS_COUNT", 8)
	cfg.Worker.RegularWorkers = getInt("WORKER_REGULAR_COUNT", 4)

	cfg.Settlement.Interval = getDuration("SETTLEMENT_INTERVAL", 2*time.Second)
	cfg.Settlement.BatchTimeout = getDuration("SETTLEMENT_BATCH_TIMEOUT", 30*time.Second)
	cfg.Settlement.BatchSize = getInt("SETTLEMENT_BATCH_SIZE", 10000)
	cfg.Settlement.LockTTL = getDuration("SETTLEMENT_LOCK_TTL", 10*time.Second)

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	return cfg
}

// defaultOperatorsEnv wires up three mock operators for local/dev use.
const defaultOperatorsEnv = "operator_1|http://mock_operator_1:9000/send|1|5s," +
	"operator_2|http://mock_operator_2:9001/send|2|5s," +
	"operator_3|http://mock_operator_3:9002/send|3|5s"

// parseOperators parses a comma-separated list of
// "name|url|priority|timeout" entries.
func parseOperators(raw string) []Operator {
	var out []Operator
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, "|")
		if len(parts) != 4 {
			continue
		}
		priority, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			continue
		}
		timeout, err := time.ParseDuration(strings.TrimSpace(parts[3]))
		if err != nil {
			timeout = 5 * time.Second
		}
		out = append(out, Operator{
			Name:     strings.TrimSpace(parts[0]),
			URL:      strings.TrimSpace(parts[1]),
			Priority: priority,
			Timeout:  timeout,
		})
	}
	return out
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig
	Logger        LoggerConfig
	Postgres      PostgresConfig
	Auth          AuthConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Elastic       ElasticsearchConfig
	Replenishment ReplenishmentConfig
}

type ServerConfig struct {
	AppEnv         string
	HTTPPort       string
	GRPCPort       string
	Timezone       string
	AllowedOrigins []string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	AutoMigrate     bool
}

type AuthConfig struct {
	URL           string
	AnonKey       string
	Timeout       time.Duration
	TokenCacheTTL time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Enabled       bool
	Brokers       []string
	OrderTopic    string
	DeliveryTopic string
	GroupID       string
}

type ElasticsearchConfig struct {
	Enabled   bool
	Addresses []string
	Username  string
	Password  string
}

type ReplenishmentConfig struct {
	LowStockThreshold int
	TargetLevel       int
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:         getEnv("APP_ENV", "dev"),
			HTTPPort:       getEnv("HTTP_PORT", ":8000"),
			GRPCPort:       getEnv("GRPC_PORT", ":8082"),
			Timezone:       getEnv("APP_TIMEZONE", "UTC"),
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", nil),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_replenishment"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			AutoMigrate:     getEnvBool("POSTGRES_AUTO_MIGRATE", true),
		},
		Auth: AuthConfig{
			URL:           getEnv("SUPABASE_URL", "http://localhost:9999"),
			AnonKey:       getEnv("SUPABASE_ANON_KEY", ""),
			Timeout:       getEnvDuration("AUTH_TIMEOUT", 5*time.Second),
			TokenCacheTTL: getEnvDuration("AUTH_TOKEN_CACHE_TTL", time.Minute),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled:       getEnvBool("KAFKA_ENABLED", false),
			Brokers:       getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			OrderTopic:    getEnv("KAFKA_ORDER_TOPIC", "replenishment.orders"),
			DeliveryTopic: getEnv("KAFKA_DELIVERY_TOPIC", "supplier.deliveries"),
			GroupID:       getEnv("KAFKA_GROUP_REPLENISHMENT", "replenishment"),
		},
		Elastic: ElasticsearchConfig{
			Enabled:   getEnvBool("ELASTICSEARCH_ENABLED", false),
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", []string{"http://localhost:9200"}),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Replenishment: ReplenishmentConfig{
			LowStockThreshold: getEnvInt("REPLENISH_LOW_STOCK_THRESHOLD", 10),
			TargetLevel:       getEnvInt("REPLENISH_TARGET_LEVEL", 10),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return fallback
}

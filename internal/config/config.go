package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Redis      RedisConfig
	Telegram   TelegramConfig
	MQTT       MQTTConfig
	Alerting   AlertingConfig
	Monitoring MonitoringConfig
	FileStore  FileStoreConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
	Issuer    string        `mapstructure:"issuer"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type TelegramConfig struct {
	BotToken     string        `mapstructure:"bot_token"`
	BotUsername  string        `mapstructure:"bot_username"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	Enabled      bool          `mapstructure:"enabled"`
}

type MQTTConfig struct {
	BrokerURL string `mapstructure:"broker_url"`
	ClientID  string `mapstructure:"client_id"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Topic     string `mapstructure:"topic"`
	QoS       byte   `mapstructure:"qos"`
	Enabled   bool   `mapstructure:"enabled"`
}

type AlertingConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	DedupTTL      time.Duration `mapstructure:"dedup_ttl"`
}

type MonitoringConfig struct {
	PrometheusPort int    `mapstructure:"prometheus_port"`
	LogLevel       string `mapstructure:"log_level"`
}

type FileStoreConfig struct {
	BasePath         string   `mapstructure:"base_path"`
	MaxFileSize      int64    `mapstructure:"max_file_size"`
	AllowedMimeTypes []string `mapstructure:"allowed_mime_types"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("BROILINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.timescaledb.sslmode", "disable")
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Auth defaults
	viper.SetDefault("auth.token_ttl", "24h")
	viper.SetDefault("auth.issuer", "broilink")

	// Redis defaults
	viper.SetDefault("redis.db", 0)

	// Telegram defaults
	viper.SetDefault("telegram.poll_interval", "2s")
	viper.SetDefault("telegram.enabled", false)

	// MQTT defaults
	viper.SetDefault("mqtt.client_id", "broilink-ingest")
	viper.SetDefault("mqtt.topic", "broilink/+/readings")
	viper.SetDefault("mqtt.qos", 1)
	viper.SetDefault("mqtt.enabled", false)

	// Alerting defaults
	viper.SetDefault("alerting.check_interval", "60s")
	viper.SetDefault("alerting.dedup_ttl", "1800s")

	// Monitoring defaults
	viper.SetDefault("monitoring.prometheus_port", 9090)
	viper.SetDefault("monitoring.log_level", "info")

	// FileStore defaults
	viper.SetDefault("filestore.base_path", "./data/files")
	viper.SetDefault("filestore.max_file_size", 10*1024*1024) // 10MB
	viper.SetDefault("filestore.allowed_mime_types", []string{"image/jpeg", "image/png"})
}

func validateConfig(config *Config) error {
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	if config.Telegram.Enabled && config.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot_token is required when telegram is enabled")
	}
	if config.MQTT.Enabled && config.MQTT.BrokerURL == "" {
		return fmt.Errorf("mqtt broker_url is required when mqtt is enabled")
	}
	return nil
}

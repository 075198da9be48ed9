package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Storage     StorageConfig
	SMTP        SMTPConfig
	LogLevel    string
	Environment string
	APIEndpoint string
}

type ServerConfig struct {
	Port int
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ConnectionString returns a Postgres DSN for database/sql.
func (c DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type StorageConfig struct {
	S3Bucket       string
	S3Region       string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Endpoint     string
	S3BaseURL      string
	ForcePathStyle bool
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads configuration from environment variables, with an optional
// .env file for local development.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", 8090)
	v.SetDefault("SERVER_HOST", "0.0.0.0")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "mailpilot")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_BASE_URL", "")
	v.SetDefault("S3_FORCE_PATH_STYLE", false)

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM_EMAIL", "noreply@mailpilot.local")
	v.SetDefault("SMTP_FROM_NAME", "Mail Pilot")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "production")
	v.SetDefault("API_ENDPOINT", "http://localhost:8090")

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No .env file, rely on environment variables and defaults.
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetInt("SERVER_PORT"),
			Host: v.GetString("SERVER_HOST"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Storage: StorageConfig{
			S3Bucket:       v.GetString("S3_BUCKET"),
			S3Region:       v.GetString("S3_REGION"),
			S3AccessKeyID:  v.GetString("S3_ACCESS_KEY_ID"),
			S3SecretKey:    v.GetString("S3_SECRET_KEY"),
			S3Endpoint:     v.GetString("S3_ENDPOINT"),
			S3BaseURL:      v.GetString("S3_BASE_URL"),
			ForcePathStyle: v.GetBool("S3_FORCE_PATH_STYLE"),
		},
		SMTP: SMTPConfig{
			Host:      v.GetString("SMTP_HOST"),
			Port:      v.GetInt("SMTP_PORT"),
			Username:  v.GetString("SMTP_USERNAME"),
			Password:  v.GetString("SMTP_PASSWORD"),
			FromEmail: v.GetString("SMTP_FROM_EMAIL"),
			FromName:  v.GetString("SMTP_FROM_NAME"),
		},
		LogLevel:    v.GetString("LOG_LEVEL"),
		Environment: v.GetString("ENVIRONMENT"),
		APIEndpoint: v.GetString("API_ENDPOINT"),
	}

	if cfg.Storage.S3BaseURL == "" && cfg.Storage.S3Bucket != "" {
		cfg.Storage.S3BaseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com",
			cfg.Storage.S3Bucket, cfg.Storage.S3Region)
	}

	return cfg, nil
}

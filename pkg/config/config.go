package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Platform PlatformConfig `mapstructure:"platform"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
}

type PlatformConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	AccessToken string        `mapstructure:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Backend  string         `mapstructure:"backend"` // memory, file or postgres
	DataDir  string         `mapstructure:"data_dir"`
	Database DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
	BotID string `mapstructure:"bot_id"`
	KBID  string `mapstructure:"kb_id"`
}

type GatewayConfig struct {
	Port           string   `mapstructure:"port"`
	JWTSecret      string   `mapstructure:"jwt_secret"`
	LoginURL       string   `mapstructure:"login_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	S3             S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket        string        `mapstructure:"bucket"`
	Region        string        `mapstructure:"region"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	// Remove leading slash from path to get database name
	dbName := strings.TrimPrefix(u.Path, "/")

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   dbName,
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set default values
	v.SetDefault("platform.base_url", "http://localhost:8080")
	v.SetDefault("platform.timeout", "30s")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.data_dir", "./data")
	v.SetDefault("storage.database.port", 5432)
	v.SetDefault("storage.database.host", "localhost")
	v.SetDefault("storage.database.user", "postgres")
	v.SetDefault("storage.database.sslmode", "disable")
	v.SetDefault("gateway.port", "3000")
	v.SetDefault("gateway.login_url", "/login")
	v.SetDefault("gateway.allowed_origins", []string{"*"})
	v.SetDefault("gateway.s3.region", "us-east-1")
	v.SetDefault("gateway.s3.presign_expiry", "1h")

	// Enable environment variable support
	v.AutomaticEnv()

	// Read the config file
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Check for DATABASE_URL environment variable
	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Storage.Database = dbConfig
	}

	// Get other environment variables
	if token := v.GetString("BOTFORGE_ACCESS_TOKEN"); token != "" {
		config.Platform.AccessToken = token
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if secret := v.GetString("JWT_SECRET"); secret != "" {
		config.Gateway.JWTSecret = secret
	}

	if bucket := v.GetString("S3_BUCKET_NAME"); bucket != "" {
		config.Gateway.S3.Bucket = bucket
	}

	return &config, nil
}

package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-only-insecure-key-do-not-use-in-production"

// Config holds all process configuration, read from the environment after an
// optional .env file.
type Config struct {
	Debug                    bool   `env:"DEBUG" env-default:"false"`
	Port                     string `env:"PORT" env-default:"8000"`
	JWTSecret                string `env:"JWT_SECRET"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"480"`
	AllowedOriginsRaw        string `env:"ALLOWED_ORIGINS" env-default:""`
	SeedUsers                bool   `env:"SEED_USERS" env-default:"true"`

	Database DatabaseConfig
	Upload   UploadConfig
	R2       R2Config
	Matching MatchingConfig
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL" env-default:""`
	Host     string `env:"DB_HOST" env-default:"localhost"`
	Port     string `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER" env-default:"postgres"`
	Password string `env:"DB_PASSWORD" env-default:""`
	Name     string `env:"DB_NAME" env-default:"lost_found"`
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the
// DB_* variables.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port)
}

type UploadConfig struct {
	Driver  string `env:"STORAGE_DRIVER" env-default:"local"` // local or r2
	Dir     string `env:"UPLOAD_DIR" env-default:"uploads"`
	MaxSize int64  `env:"MAX_UPLOAD_SIZE" env-default:"5242880"`
}

type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"CLOUDFLARE_SECRET_ACCESS_KEY"`
	BucketName      string `env:"CLOUDFLARE_BUCKET_NAME"`
	PublicURL       string `env:"CLOUDFLARE_PUBLIC_URL"`
	Region          string `env:"CLOUDFLARE_REGION" env-default:"auto"`
}

type MatchingConfig struct {
	Threshold    float64 `env:"MATCH_THRESHOLD" env-default:"0.70"`
	ImageWeight  float64 `env:"IMAGE_WEIGHT" env-default:"0.4"`
	TextWeight   float64 `env:"TEXT_WEIGHT" env-default:"0.6"`
	DiscardFloor float64 `env:"MATCH_DISCARD_FLOOR" env-default:"0.05"`
	Workers      int     `env:"MATCH_WORKERS" env-default:"4"`
}

// Load reads .env if present and then the environment.
func Load() (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		if !c.Debug {
			return fmt.Errorf("JWT_SECRET is not set; refusing to start outside DEBUG mode")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.Upload.Driver != "local" && c.Upload.Driver != "r2" {
		return fmt.Errorf("STORAGE_DRIVER must be 'local' or 'r2', got %q", c.Upload.Driver)
	}
	if c.Matching.Workers < 1 {
		c.Matching.Workers = 1
	}
	return nil
}

// AllowedOrigins splits ALLOWED_ORIGINS on commas, dropping blanks.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOriginsRaw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

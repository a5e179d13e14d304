package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every environment-driven option of the API.
type Config struct {
	Env  string `env:"GO_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"5000"`

	MongoURI string `env:"MONGO_URI,required,notEmpty"`
	MongoDB  string `env:"MONGO_DB" envDefault:"devcamper"`

	GeocoderProvider string        `env:"GEOCODER_PROVIDER" envDefault:"mapquest"`
	GeocoderAPIKey   string        `env:"GEOCODER_API_KEY"`
	GeocoderCacheTTL time.Duration `env:"GEOCODER_CACHE_TTL" envDefault:"24h"`
	RedisURL         string        `env:"REDIS_URL"`

	MaxFileUpload  int64  `env:"MAX_FILE_UPLOAD" envDefault:"1000000"`
	FileUploadPath string `env:"FILE_UPLOAD_PATH" envDefault:"./public/uploads"`

	RatingMin float64 `env:"RATING_MIN" envDefault:"1"`
	RatingMax float64 `env:"RATING_MAX" envDefault:"10"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTExpire time.Duration `env:"JWT_EXPIRE" envDefault:"720h"`

	PostmarkToken string `env:"POSTMARK_API_TOKEN"`
	EmailSender   string `env:"EMAIL_SENDER"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
}

// IsDevelopment reports whether request logging should be enabled.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file (or the files named in ENV_FILE) and parses the
// environment into a Config.
func Load() (*Config, error) {
	if file := os.Getenv("ENV_FILE"); file != "" {
		if err := godotenv.Load(file); err != nil {
			return nil, fmt.Errorf("load %s: %w", file, err)
		}
	} else {
		// A missing .env is fine, the process environment is used as is.
		_ = godotenv.Load()
	}

	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RatingMin > c.RatingMax {
		return fmt.Errorf("RATING_MIN (%v) is greater than RATING_MAX (%v)", c.RatingMin, c.RatingMax)
	}
	if c.MaxFileUpload <= 0 {
		return fmt.Errorf("MAX_FILE_UPLOAD must be positive, got %d", c.MaxFileUpload)
	}
	switch c.GeocoderProvider {
	case "mapquest", "google":
	default:
		return fmt.Errorf("unsupported GEOCODER_PROVIDER %q", c.GeocoderProvider)
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "LUNCHPICK"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	KakaoRESTAPIKey string        `envconfig:"KAKAO_REST_API_KEY"`
	KakaoJSAPIKey   string        `envconfig:"KAKAO_JS_API_KEY"`
	KakaoBaseURL    string        `envconfig:"KAKAO_BASE_URL" default:"https://dapi.kakao.com"`
	KakaoRateLimit  float64       `envconfig:"KAKAO_RATE_LIMIT" default:"10"`
	KakaoTimeout    time.Duration `envconfig:"KAKAO_TIMEOUT" default:"10s"`

	DefaultRadius float64 `envconfig:"DEFAULT_RADIUS" default:"2000"`
	DefaultLat    float64 `envconfig:"DEFAULT_LAT" default:"34.9687735"`
	DefaultLon    float64 `envconfig:"DEFAULT_LON" default:"127.4802359"`

	// Empty disables IP based location lookups.
	LocateURL string `envconfig:"LOCATE_URL" default:"http://ip-api.com/json/"`

	// TrueType font for PNG map labels. Go Regular has no Hangul glyphs.
	MapFontPath string `envconfig:"MAP_FONT"`

	SentryDSN   string   `envconfig:"SENTRY_DSN"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the daemon cannot run without.
func (c *Config) Validate() error {
	if c.KakaoRESTAPIKey == "" {
		return errors.New("LUNCHPICK_KAKAO_REST_API_KEY is required")
	}
	if err := domain.ValidateRadius(c.DefaultRadius); err != nil {
		return fmt.Errorf("LUNCHPICK_DEFAULT_RADIUS: %w", err)
	}
	if err := c.DefaultCenter().Validate(); err != nil {
		return fmt.Errorf("LUNCHPICK_DEFAULT_LAT/LON: %w", err)
	}
	return nil
}

func (c *Config) DefaultCenter() domain.Coordinate {
	return domain.Coordinate{Lon: c.DefaultLon, Lat: c.DefaultLat}
}

func (c *Config) HasKakaoMap() bool {
	return c.KakaoJSAPIKey != ""
}

func (c *Config) HasLocator() bool {
	return c.LocateURL != ""
}

func (c *Config) HasSentry() bool {
	return c.SentryDSN != ""
}

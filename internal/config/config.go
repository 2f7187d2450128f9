package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// DefaultBaseURL is the OpenWeather API host
const DefaultBaseURL = "http://api.openweathermap.org"

// Config holds process configuration shared by the CLI and the server
type Config struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	RequestTimeout     time.Duration
	DatabaseURL        string
	Port               string
	LogLevel           string
	Env                string
}

// Load reads configuration from the environment, after loading .env if present.
// defaultLogLevel differs per binary so the CLI stays quiet on the terminal.
func Load(defaultLogLevel string) (*Config, error) {
	// A missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	timeout, err := time.ParseDuration(getEnv("WEATHER_TIMEOUT", "10s"))
	if err != nil {
		return nil, errors.Wrap(err, "config: invalid WEATHER_TIMEOUT")
	}
	if timeout <= 0 {
		return nil, errors.New("config: WEATHER_TIMEOUT must be positive")
	}

	cfg := &Config{
		OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
		OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", DefaultBaseURL),
		RequestTimeout:     timeout,
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", defaultLogLevel),
		Env:                getEnv("GO_ENV", "production"),
	}

	return cfg, nil
}

// Validate reports missing required settings
func (c *Config) Validate() error {
	if c.OpenWeatherAPIKey == "" {
		return errors.New("config: OPENWEATHER_API_KEY is not set")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

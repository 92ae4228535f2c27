// Package config loads runtime settings from .env and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ukaji3/datavision-go/pkg/datavision"
	"github.com/ukaji3/datavision-go/pkg/datavision/llm"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultSessionCapacity = 128
)

// Config holds the runtime settings.
type Config struct {
	// APIKey is the Gemini API key, from GEMINI_API_KEY or API_KEY.
	APIKey          string
	Model           string
	Temperature     float32
	Language        string
	LogFile         string
	Addr            string
	SessionCapacity int
}

// Load reads .env when present, then the environment. Unset or blank values
// fall back to defaults; malformed numbers are errors.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function.
func FromEnv(getenv func(string) string) (*Config, error) {
	get := func(key string) string { return strings.TrimSpace(getenv(key)) }

	cfg := &Config{
		APIKey:          firstNonEmpty(get("GEMINI_API_KEY"), get("API_KEY")),
		Model:           firstNonEmpty(get("DATAVISION_MODEL"), llm.DefaultModel),
		Temperature:     datavision.DefaultTemperature,
		Language:        firstNonEmpty(get("DATAVISION_LANGUAGE"), datavision.DefaultLanguage),
		LogFile:         get("DATAVISION_LOG_FILE"),
		Addr:            normalizeAddr(firstNonEmpty(get("DATAVISION_ADDR"), DefaultAddr)),
		SessionCapacity: DefaultSessionCapacity,
	}

	if raw := get("DATAVISION_TEMPERATURE"); raw != "" {
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil || v < 0 || v > 2 {
			return nil, fmt.Errorf("config: invalid DATAVISION_TEMPERATURE %q", raw)
		}
		cfg.Temperature = float32(v)
	}
	if raw := get("DATAVISION_SESSION_CAPACITY"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("config: invalid DATAVISION_SESSION_CAPACITY %q", raw)
		}
		cfg.SessionCapacity = v
	}
	return cfg, nil
}

// Options returns the analysis options carried by the config.
func (c *Config) Options() datavision.Options {
	t := c.Temperature
	return datavision.Options{Temperature: &t, Language: c.Language}
}

func normalizeAddr(addr string) string {
	if strings.Contains(addr, ":") {
		return addr
	}
	return ":" + addr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

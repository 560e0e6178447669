// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pewresearch/search-sampler/retry"
	"github.com/pewresearch/search-sampler/sampler"
	"github.com/pewresearch/search-sampler/trends"
)

// Settings holds all application configuration.
type Settings struct {
	API     APIConfig
	Sampler SamplerConfig
}

// APIConfig holds Trends API connection configuration. The key is looked
// up separately via APIKey so settings can be built without one.
type APIConfig struct {
	Server  string
	Version string
}

// SamplerConfig holds sampling run configuration.
type SamplerConfig struct {
	OutputPath   string
	NumSamples   int
	RetryLimit   int
	RetrySleep   time.Duration
	RetryLongNap time.Duration
}

// New creates settings, loading values from environment variables.
// Returns an error if an environment variable contains an invalid value.
func New() (Settings, error) {
	numSamples, err := getEnvInt("SAMPLER_NUM_SAMPLES", sampler.DefaultNumSamples)
	if err != nil {
		return Settings{}, err
	}

	retryLimit, err := getEnvInt("SAMPLER_RETRY_LIMIT", 20)
	if err != nil {
		return Settings{}, err
	}

	sleepMinutes, err := getEnvInt("SAMPLER_RETRY_SLEEP_MINUTES", 1)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		API: APIConfig{
			Server:  getEnvString("TRENDS_SERVER", trends.DefaultServer),
			Version: getEnvString("TRENDS_API_VERSION", trends.DefaultVersion),
		},
		Sampler: SamplerConfig{
			OutputPath:   getEnvString("SAMPLER_OUTPUT_PATH", "data"),
			NumSamples:   numSamples,
			RetryLimit:   retryLimit,
			RetrySleep:   time.Duration(sleepMinutes) * time.Minute,
			RetryLongNap: 5 * time.Minute,
		},
	}, nil
}

// MustNew creates settings, panicking on invalid environment values.
// Use this only when configuration errors should be fatal.
func MustNew() Settings {
	settings, err := New()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// APIKey returns the Trends API key from the environment.
func APIKey() (string, error) {
	key := os.Getenv("TRENDS_API_KEY")
	if key == "" {
		return "", fmt.Errorf("TRENDS_API_KEY environment variable not set")
	}
	return key, nil
}

// RetryPolicy builds the retry policy described by the settings.
func (s Settings) RetryPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Limit = s.Sampler.RetryLimit
	p.Sleep = s.Sampler.RetrySleep
	p.LongSleep = s.Sampler.RetryLongNap
	return p
}

// Environment variable helpers with proper error handling

func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return i, nil
}

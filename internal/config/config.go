package config

import (
	"os"
	"strconv"
	"time"

	"github.com/schollz/beatcrop/internal/storage"
)

// Config holds runtime configuration, loaded from environment variables.
// Command-line flags override these values.
type Config struct {
	// Playback engine (OSC)
	OSCHost       string
	OSCPort       int // engine listens here
	OSCListenPort int // engine playhead reports arrive here

	// Editing defaults
	Mode          string
	ContextLength float64 // seconds

	// Object storage for r2:// paths
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2Bucket          string
	FetchTimeout      time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		OSCHost:       envStr("BEATCROP_OSC_HOST", "127.0.0.1"),
		OSCPort:       envInt("BEATCROP_OSC_PORT", 57120),
		OSCListenPort: envInt("BEATCROP_OSC_LISTEN_PORT", 57121),

		Mode:          envStr("BEATCROP_MODE", "precede"),
		ContextLength: envFloat("BEATCROP_CONTEXT_LENGTH", 4.0),

		R2AccountID:       envStr("R2_ACCOUNT_ID", ""),
		R2AccessKeyID:     envStr("R2_ACCESS_KEY_ID", ""),
		R2SecretAccessKey: envStr("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:          envStr("R2_BUCKET", ""),
		FetchTimeout:      time.Duration(envInt("BEATCROP_FETCH_TIMEOUT", 30)) * time.Second,
	}
}

// R2Credentials returns the object storage settings for r2:// paths.
func (c Config) R2Credentials() storage.Credentials {
	return storage.Credentials{
		AccountID:       c.R2AccountID,
		AccessKeyID:     c.R2AccessKeyID,
		SecretAccessKey: c.R2SecretAccessKey,
		Bucket:          c.R2Bucket,
	}
}

// HasR2 reports whether object storage credentials are configured.
func (c Config) HasR2() bool {
	return len(c.R2Credentials().Missing()) == 0
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
	defaultMaxFileSizeMiB    = 20
	defaultYtDlpBinary       = "yt-dlp"
	defaultUvxBinary         = "uvx"
	defaultModel             = "base"
	defaultDevice            = "auto"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Captions: Captions{
			Languages:         []string{"en"},
			MaxRetries:        defaultMaxRetries,
			RetryDelaySeconds: defaultRetryDelaySeconds,
			DetectionEnabled:  true,
		},
		Audio: Audio{
			MaxFileSizeMiB: defaultMaxFileSizeMiB,
			YtDlpBinary:    defaultYtDlpBinary,
		},
		STT: STT{
			Model:     defaultModel,
			Device:    defaultDevice,
			UvxBinary: defaultUvxBinary,
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}

func defaultCachePath() string {
	base := ""
	if value, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(value) != "" {
		base = value
	} else if home, err := os.UserHomeDir(); err == nil {
		base = filepath.Join(home, ".cache")
	}
	if base == "" {
		return ""
	}
	return filepath.Join(base, "ytscribe", "transcripts.db")
}

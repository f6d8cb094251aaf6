package config

import (
	"fmt"
	"strings"

	"ytscribe/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCaptions()
	c.normalizeAudio()
	c.normalizeSTT()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) != "" {
		if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
			return fmt.Errorf("paths.work_dir: %w", err)
		}
	} else {
		c.Paths.WorkDir = ""
	}
	if strings.TrimSpace(c.Cache.Path) != "" {
		if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
			return fmt.Errorf("cache.path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeCaptions() {
	c.Captions.Languages = language.NormalizePreference(c.Captions.Languages)
	if c.Captions.MaxRetries == 0 {
		c.Captions.MaxRetries = defaultMaxRetries
	}
}

func (c *Config) normalizeAudio() {
	if c.Audio.MaxFileSizeMiB == 0 {
		c.Audio.MaxFileSizeMiB = defaultMaxFileSizeMiB
	}
	c.Audio.YtDlpBinary = strings.TrimSpace(c.Audio.YtDlpBinary)
	if c.Audio.YtDlpBinary == "" {
		c.Audio.YtDlpBinary = defaultYtDlpBinary
	}
}

func (c *Config) normalizeSTT() {
	c.STT.Model = strings.TrimSpace(c.STT.Model)
	if c.STT.Model == "" {
		c.STT.Model = defaultModel
	}
	c.STT.Device = strings.ToLower(strings.TrimSpace(c.STT.Device))
	if c.STT.Device == "" {
		c.STT.Device = defaultDevice
	}
	c.STT.UvxBinary = strings.TrimSpace(c.STT.UvxBinary)
	if c.STT.UvxBinary == "" {
		c.STT.UvxBinary = defaultUvxBinary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateCaptions(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateSTT(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateCaptions() error {
	if c.Captions.MaxRetries < 1 {
		return errors.New("captions.max_retries must be at least 1")
	}
	if c.Captions.RetryDelaySeconds < 0 {
		return errors.New("captions.retry_delay_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.MaxFileSizeMiB < 1 {
		return errors.New("audio.max_filesize_mib must be at least 1")
	}
	return nil
}

func (c *Config) validateSTT() error {
	switch c.STT.Device {
	case "auto", "cpu", "cuda":
		return nil
	default:
		return fmt.Errorf("stt.device must be one of auto, cpu, cuda (got %q)", c.STT.Device)
	}
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path must be set when cache.enabled is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
}

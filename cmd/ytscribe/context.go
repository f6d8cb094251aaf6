package main

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/audio"
	"ytscribe/internal/captions"
	"ytscribe/internal/config"
	"ytscribe/internal/logging"
	"ytscribe/internal/pipeline"
	"ytscribe/internal/stt"
	"ytscribe/internal/transcriptcache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		// Logs go to stderr so the transcript on stdout stays pipeable.
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Writer: os.Stderr,
		})
	})
	return c.logger, c.loggerErr
}

// buildPipeline assembles the transcript pipeline from the loaded config.
// The returned cleanup releases the cache store and must always be called.
func (c *commandContext) buildPipeline(disableCache bool) (*pipeline.Pipeline, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	var detector captions.Detector
	if cfg.Captions.DetectionEnabled {
		detector = captions.NewWhatlangDetector()
	}
	strategy := captions.NewStrategy(
		captions.NewYouTubeClient(logger),
		detector,
		captions.StrategyConfig{
			MaxRetries: cfg.Captions.MaxRetries,
			RetryDelay: cfg.RetryDelay(),
		},
		logger,
	)

	cleanup := func() {}
	var cache pipeline.Cache
	if cfg.Cache.Enabled && !disableCache {
		store, openErr := transcriptcache.Open(cfg.Cache.Path, logger)
		if openErr != nil {
			logger.Warn("transcript cache unavailable, continuing without it",
				logging.String("path", cfg.Cache.Path),
				logging.Error(openErr),
			)
		} else {
			cache = store
			cleanup = func() { _ = store.Close() }
		}
	}

	p, err := pipeline.New(pipeline.Options{
		Captions:   strategy,
		Downloader: audio.NewDownloader(cfg.Audio.YtDlpBinary, cfg.Audio.MaxFileSizeMiB, logger),
		Transcriber: stt.NewEngine(stt.Config{
			Model:     cfg.STT.Model,
			Device:    cfg.STT.Device,
			UvxBinary: cfg.STT.UvxBinary,
		}, logger),
		Cache:     cache,
		WorkRoot:  cfg.Paths.WorkDir,
		Languages: cfg.Captions.Languages,
	}, logger)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return p, cleanup, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/transcriptcache"
)

// Transcript sources recorded in results and the cache.
const (
	SourceCaptions = "captions"
	SourceSTT      = "stt"
)

// CaptionResolver resolves a transcript from published caption tracks.
type CaptionResolver interface {
	Resolve(ctx context.Context, videoID string, preferences []string) (string, bool)
}

// AudioDownloader fetches a compressed audio stream into destDir and returns
// the downloaded file path.
type AudioDownloader interface {
	Download(ctx context.Context, videoURL, destDir string) (string, error)
}

// Transcriber converts an audio file to plain text. Available reports whether
// the capability is installed; it gates the whole audio fallback, so a missing
// toolchain is caught before any download starts.
type Transcriber interface {
	Available() bool
	Transcribe(ctx context.Context, source, outputDir string) (string, error)
}

// Cache persists resolved transcripts between runs.
type Cache interface {
	Lookup(ctx context.Context, videoID string) (transcriptcache.Entry, bool, error)
	Save(ctx context.Context, entry transcriptcache.Entry) error
}

// Result is a successfully acquired transcript.
type Result struct {
	VideoID string
	Text    string
	Source  string
}

// Options wires the pipeline's capabilities. Cache is optional; everything
// else is required.
type Options struct {
	Captions    CaptionResolver
	Downloader  AudioDownloader
	Transcriber Transcriber
	Cache       Cache
	WorkRoot    string
	Languages   []string
}

// Pipeline acquires a transcript for a video: captions first, then the
// audio-and-whisper fallback. Every fallback run works inside a fresh
// ephemeral directory that is removed before Run returns.
type Pipeline struct {
	opts   Options
	logger *slog.Logger
}

// New validates the wiring and returns a ready pipeline.
func New(opts Options, logger *slog.Logger) (*Pipeline, error) {
	if opts.Captions == nil {
		return nil, errors.New("caption resolver required")
	}
	if opts.Downloader == nil {
		return nil, errors.New("audio downloader required")
	}
	if opts.Transcriber == nil {
		return nil, errors.New("transcriber required")
	}
	if opts.WorkRoot == "" {
		opts.WorkRoot = os.TempDir()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}, nil
}

// WatchURL returns the canonical watch page URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Run acquires a transcript for videoID. The returned error carries the
// failure classification of whichever stage exhausted the fallback chain.
func (p *Pipeline) Run(ctx context.Context, videoID string) (Result, error) {
	logger := p.logger.With(
		logging.String(logging.FieldRunID, uuid.NewString()),
		logging.String(logging.FieldVideoID, videoID),
	)

	if p.opts.Cache != nil {
		entry, found, err := p.opts.Cache.Lookup(ctx, videoID)
		if err != nil {
			logger.Warn("cache lookup failed", logging.Error(err))
		} else if found {
			// The cache hit is a delivery detail; the result keeps the
			// provenance recorded when the transcript was first acquired.
			logger.Info("transcript served from cache", logging.String("source", entry.Source))
			return Result{VideoID: videoID, Text: entry.Text, Source: entry.Source}, nil
		}
	}

	if text, ok := p.opts.Captions.Resolve(ctx, videoID, p.opts.Languages); ok {
		logger.Info("transcript resolved from captions", logging.Int("chars", len(text)))
		p.store(ctx, logger, videoID, SourceCaptions, text)
		return Result{VideoID: videoID, Text: text, Source: SourceCaptions}, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("caption resolution interrupted: %w", err)
	}

	logger.Info("no usable captions, falling back to audio transcription")
	text, err := p.transcribeAudio(ctx, logger, videoID)
	if err != nil {
		// A missing capability is a deployment problem, not a content fact.
		if errors.Is(err, services.ErrConfiguration) {
			logger.Error("audio transcription fallback misconfigured", logging.Error(err))
		} else {
			logger.Warn("audio transcription fallback failed", logging.Error(err))
		}
		return Result{}, err
	}

	p.store(ctx, logger, videoID, SourceSTT, text)
	return Result{VideoID: videoID, Text: text, Source: SourceSTT}, nil
}

// transcribeAudio downloads the audio stream into a scoped temp directory,
// runs whisper over it, and removes the directory regardless of outcome.
func (p *Pipeline) transcribeAudio(ctx context.Context, logger *slog.Logger, videoID string) (string, error) {
	if !p.opts.Transcriber.Available() {
		return "", services.Wrap(services.ErrConfiguration, "pipeline", "transcribe",
			"speech-to-text capability not installed; skipping audio download", nil)
	}
	if err := os.MkdirAll(p.opts.WorkRoot, 0o755); err != nil {
		return "", fmt.Errorf("ensure work root: %w", err)
	}
	workDir, err := os.MkdirTemp(p.opts.WorkRoot, "yt_audio_*")
	if err != nil {
		return "", fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(workDir); removeErr != nil {
			logger.Warn("failed to remove work dir",
				logging.String("path", workDir),
				logging.Error(removeErr),
			)
		}
	}()

	audioPath, err := p.opts.Downloader.Download(ctx, WatchURL(videoID), workDir)
	if err != nil {
		return "", err
	}
	return p.opts.Transcriber.Transcribe(ctx, audioPath, workDir)
}

func (p *Pipeline) store(ctx context.Context, logger *slog.Logger, videoID, source, text string) {
	if p.opts.Cache == nil {
		return
	}
	entry := transcriptcache.Entry{VideoID: videoID, Source: source, Text: text}
	if err := p.opts.Cache.Save(ctx, entry); err != nil {
		logger.Warn("cache save failed", logging.Error(err))
	}
}

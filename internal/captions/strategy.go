package captions

import (
	"context"
	"log/slog"
	"time"

	"ytscribe/internal/language"
	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/textutil"
)

// detectionSampleSize bounds how many snippets feed the language detector;
// the full track is returned on a match.
const detectionSampleSize = 20

// StrategyConfig tunes the retry behavior for directory listing.
type StrategyConfig struct {
	// MaxRetries is the total number of listing attempts for transient faults.
	MaxRetries int
	// RetryDelay is the fixed wait between attempts. Kept fixed rather than
	// exponential; each attempt hits the same endpoint once.
	RetryDelay time.Duration
}

// Strategy resolves a transcript candidate from a video's caption directory
// using a four-tier fallback. A nil detector statically disables tier four.
type Strategy struct {
	lister   Lister
	detector Detector
	cfg      StrategyConfig
	logger   *slog.Logger
}

// NewStrategy builds a caption retrieval strategy over the given directory.
func NewStrategy(lister Lister, detector Detector, cfg StrategyConfig, logger *slog.Logger) *Strategy {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return &Strategy{
		lister:   lister,
		detector: detector,
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "captions"),
	}
}

// Resolve returns the best transcript candidate for videoID, or ok=false when
// no tier succeeds. It never returns an error: definitive absence, exhausted
// retries, and cancellation all degrade to absence, with the cause logged.
func (s *Strategy) Resolve(ctx context.Context, videoID string, prefs []string) (string, bool) {
	prefs = language.NormalizePreference(prefs)
	logger := s.logger.With(logging.String(logging.FieldVideoID, videoID))

	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		logger.Debug("listing caption tracks",
			logging.Int("attempt", attempt),
			logging.Int("max_retries", s.cfg.MaxRetries),
		)

		tracks, err := s.lister.List(ctx, videoID)
		if err == nil {
			return s.evaluate(ctx, logger, tracks, prefs)
		}

		if services.Definitive(err) {
			logger.Info("captions unavailable", logging.Error(err))
			return "", false
		}
		if ctx.Err() != nil {
			logger.Info("caption listing canceled", logging.Error(ctx.Err()))
			return "", false
		}

		if attempt == s.cfg.MaxRetries {
			logger.Warn("caption listing retries exhausted",
				logging.Int("attempts", attempt),
				logging.Error(err),
			)
			return "", false
		}

		logger.Debug("transient caption listing failure",
			logging.Int("attempt", attempt),
			logging.Duration("retry_delay", s.cfg.RetryDelay),
			logging.Error(err),
		)
		if !sleepCtx(ctx, s.cfg.RetryDelay) {
			logger.Info("caption listing canceled during retry wait")
			return "", false
		}
	}
	return "", false
}

// evaluate walks the tiers in strict priority order. A tier's failure is
// final for that tier; evaluation only ever advances.
func (s *Strategy) evaluate(ctx context.Context, logger *slog.Logger, tracks []Track, prefs []string) (string, bool) {
	// Tier 1: manual track in a preferred language.
	// Tier 2: auto-generated track in a preferred language.
	for _, origin := range []Origin{OriginManual, OriginAuto} {
		if text, ok := s.directMatch(ctx, logger, tracks, prefs, origin); ok {
			return text, true
		}
	}

	// Tier 3: server-side translation. Preference languages are the outer
	// loop so the highest-priority target language wins across all tracks.
	for _, lang := range prefs {
		for _, track := range tracks {
			if !track.Translatable {
				continue
			}
			snippets, err := track.Translate(ctx, lang)
			if err != nil {
				logger.Debug("translation failed",
					logging.String("track_language", track.Language),
					logging.String("target_language", lang),
					logging.Error(err),
				)
				continue
			}
			if text := joinSnippets(snippets); text != "" {
				logger.Debug("using translated track",
					logging.String("track_language", track.Language),
					logging.String("target_language", lang),
				)
				return text, true
			}
		}
	}

	// Tier 4: mislabeled tracks, identified by detecting the language of a
	// sampled prefix. Gated on detector presence, not discovered by failure.
	if s.detector != nil {
		if text, ok := s.detectMislabeled(ctx, logger, tracks, prefs); ok {
			return text, true
		}
	}

	logger.Info("no suitable caption track found",
		logging.Int("tracks", len(tracks)),
	)
	return "", false
}

func (s *Strategy) directMatch(ctx context.Context, logger *slog.Logger, tracks []Track, prefs []string, origin Origin) (string, bool) {
	for _, lang := range prefs {
		for _, track := range tracks {
			if track.Origin != origin || !language.Equal(track.Language, lang) {
				continue
			}
			snippets, err := track.Fetch(ctx)
			if err != nil {
				logger.Debug("track fetch failed",
					logging.String("track_language", track.Language),
					logging.String("origin", string(track.Origin)),
					logging.Error(err),
				)
				continue
			}
			if text := joinSnippets(snippets); text != "" {
				logger.Debug("using direct track match",
					logging.String("track_language", track.Language),
					logging.String("origin", string(track.Origin)),
				)
				return text, true
			}
		}
	}
	return "", false
}

func (s *Strategy) detectMislabeled(ctx context.Context, logger *slog.Logger, tracks []Track, prefs []string) (string, bool) {
	desired := language.PrimarySet(prefs)
	for _, track := range tracks {
		snippets, err := track.Fetch(ctx)
		if err != nil {
			continue
		}
		sample := snippets
		if len(sample) > detectionSampleSize {
			sample = sample[:detectionSampleSize]
		}
		sampleText := joinSnippets(sample)
		if sampleText == "" {
			continue
		}
		detected, ok := s.detector.DetectLanguage(sampleText)
		if !ok {
			continue
		}
		if _, match := desired[language.Primary(detected)]; !match {
			continue
		}
		if text := joinSnippets(snippets); text != "" {
			logger.Debug("using mislabeled track",
				logging.String("track_language", track.Language),
				logging.String("detected_language", detected),
			)
			return text, true
		}
	}
	return "", false
}

func joinSnippets(snippets []Snippet) string {
	texts := make([]string, 0, len(snippets))
	for _, s := range snippets {
		texts = append(texts, s.Text)
	}
	return textutil.JoinSnippets(texts)
}

// sleepCtx waits for d or until ctx is done; it reports false on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

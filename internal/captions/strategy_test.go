package captions

import (
	"context"
	"errors"
	"testing"
	"time"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

type listResult struct {
	tracks []Track
	err    error
}

type fakeLister struct {
	calls   int
	results []listResult
}

func (f *fakeLister) List(ctx context.Context, videoID string) ([]Track, error) {
	result := f.results[len(f.results)-1]
	if f.calls < len(f.results) {
		result = f.results[f.calls]
	}
	f.calls++
	return result.tracks, result.err
}

func staticTrack(lang string, origin Origin, translatable bool, snippets []Snippet, fetches *int) Track {
	return NewTrack(lang, "", origin, translatable, func(ctx context.Context, translateTo string) ([]Snippet, error) {
		if fetches != nil {
			*fetches++
		}
		return snippets, nil
	})
}

func snips(texts ...string) []Snippet {
	out := make([]Snippet, 0, len(texts))
	for _, t := range texts {
		out = append(out, Snippet{Text: t})
	}
	return out
}

func newTestStrategy(lister Lister, detector Detector, retries int) *Strategy {
	return NewStrategy(lister, detector, StrategyConfig{
		MaxRetries: retries,
		RetryDelay: time.Millisecond,
	}, logging.NewNop())
}

func TestManualTrackWinsAndNormalizesWhitespace(t *testing.T) {
	var manualFetches, autoFetches int
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{
			staticTrack("en", OriginAuto, false, snips("should", "not", "be", "used"), &autoFetches),
			staticTrack("en", OriginManual, false, snips("Hello   world"), &manualFetches),
		},
	}}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"})
	if !ok {
		t.Fatal("expected a transcript candidate")
	}
	if text != "Hello world" {
		t.Fatalf("text = %q, want %q", text, "Hello world")
	}
	if manualFetches != 1 {
		t.Fatalf("manual track fetched %d times, want 1", manualFetches)
	}
	if autoFetches != 0 {
		t.Fatalf("auto track fetched %d times, want 0", autoFetches)
	}
	if lister.calls != 1 {
		t.Fatalf("listing called %d times, want 1", lister.calls)
	}
}

func TestAutoGeneratedFallback(t *testing.T) {
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{
			staticTrack("de", OriginManual, false, snips("falsche Sprache"), nil),
			staticTrack("en", OriginAuto, false, snips("auto", "captions"), nil),
		},
	}}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"})
	if !ok || text != "auto captions" {
		t.Fatalf("got (%q, %v), want (%q, true)", text, ok, "auto captions")
	}
}

func TestPreferenceOrderBeatsTrackOrder(t *testing.T) {
	// Both preferred languages exist as manual tracks; the first preference
	// wins even though the other track is listed first.
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{
			staticTrack("en", OriginManual, false, snips("english text"), nil),
			staticTrack("de", OriginManual, false, snips("deutscher Text"), nil),
		},
	}}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"de", "en"})
	if !ok || text != "deutscher Text" {
		t.Fatalf("got (%q, %v), want German manual track", text, ok)
	}
}

func TestTranslationTierOrdering(t *testing.T) {
	// No direct match. Two translatable tracks; translation into the first
	// preference fails for the first track and succeeds for the second, so
	// the second track's translation wins before the second preference is
	// ever tried.
	var secondPrefUsed bool
	trackA := NewTrack("ja", "", OriginManual, true, func(ctx context.Context, translateTo string) ([]Snippet, error) {
		if translateTo == "fr" {
			secondPrefUsed = true
		}
		return nil, errors.New("translation unavailable")
	})
	trackB := NewTrack("ko", "", OriginManual, true, func(ctx context.Context, translateTo string) ([]Snippet, error) {
		if translateTo == "en" {
			return snips("translated to english"), nil
		}
		if translateTo == "fr" {
			secondPrefUsed = true
			return snips("traduit"), nil
		}
		return snips("원문"), nil
	})
	lister := &fakeLister{results: []listResult{{tracks: []Track{trackA, trackB}}}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en", "fr"})
	if !ok || text != "translated to english" {
		t.Fatalf("got (%q, %v), want english translation", text, ok)
	}
	if secondPrefUsed {
		t.Fatal("second preference should never be attempted once the first succeeds")
	}
}

func TestEmptyTranslationAdvances(t *testing.T) {
	track := NewTrack("ja", "", OriginManual, true, func(ctx context.Context, translateTo string) ([]Snippet, error) {
		return nil, nil
	})
	lister := &fakeLister{results: []listResult{{tracks: []Track{track}}}}

	if text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"}); ok {
		t.Fatalf("empty translation must not count as success, got %q", text)
	}
}

type fixedDetector struct {
	code string
}

func (d fixedDetector) DetectLanguage(sample string) (string, bool) {
	if d.code == "" {
		return "", false
	}
	return d.code, true
}

func TestDetectionTierReturnsFullTrack(t *testing.T) {
	// 25 snippets: detection samples the first 20, but the full joined text
	// must be returned.
	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "w"
	}
	full := ""
	for i := range texts {
		if i > 0 {
			full += " "
		}
		full += "w"
	}
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{staticTrack("mis", OriginManual, false, snips(texts...), nil)},
	}}}

	text, ok := newTestStrategy(lister, fixedDetector{code: "en"}, 3).Resolve(context.Background(), "abc12345678", []string{"en-US"})
	if !ok {
		t.Fatal("expected detection tier to match")
	}
	if text != full {
		t.Fatalf("detection tier returned %d chars, want full track (%d chars)", len(text), len(full))
	}
}

func TestDetectionTierSkippedWithoutDetector(t *testing.T) {
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{staticTrack("mis", OriginManual, false, snips("english words here"), nil)},
	}}}

	if text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"}); ok {
		t.Fatalf("tier 4 must be disabled without a detector, got %q", text)
	}
}

func TestDetectionMismatchYieldsAbsence(t *testing.T) {
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{staticTrack("mis", OriginManual, false, snips("palabras"), nil)},
	}}}

	if _, ok := newTestStrategy(lister, fixedDetector{code: "es"}, 3).Resolve(context.Background(), "abc12345678", []string{"en"}); ok {
		t.Fatal("detected language outside the preference set must not match")
	}
}

func TestTransientFaultsRetriedThenAbsence(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "captions", "list", "boom", nil)
	lister := &fakeLister{results: []listResult{{err: transient}}}

	start := time.Now()
	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"})
	elapsed := time.Since(start)

	if ok {
		t.Fatalf("expected absence, got %q", text)
	}
	if lister.calls != 3 {
		t.Fatalf("listing called %d times, want exactly 3", lister.calls)
	}
	// Two waits of the fixed delay between three attempts.
	if elapsed < 2*time.Millisecond {
		t.Fatalf("expected fixed delays between attempts, elapsed %v", elapsed)
	}
}

func TestDefinitiveFaultNotRetried(t *testing.T) {
	lister := &fakeLister{results: []listResult{{
		err: services.Wrap(services.ErrUnavailable, "captions", "list", "captions disabled", nil),
	}}}

	if _, ok := newTestStrategy(lister, nil, 5).Resolve(context.Background(), "abc12345678", []string{"en"}); ok {
		t.Fatal("expected absence")
	}
	if lister.calls != 1 {
		t.Fatalf("listing called %d times, want 1 (no retry on definitive fault)", lister.calls)
	}
}

func TestTransientThenSuccess(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "captions", "list", "blip", nil)
	lister := &fakeLister{results: []listResult{
		{err: transient},
		{tracks: []Track{staticTrack("en", OriginManual, false, snips("recovered"), nil)}},
	}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", []string{"en"})
	if !ok || text != "recovered" {
		t.Fatalf("got (%q, %v), want recovery on second attempt", text, ok)
	}
	if lister.calls != 2 {
		t.Fatalf("listing called %d times, want 2", lister.calls)
	}
}

func TestCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	lister := &fakeLister{results: []listResult{{
		err: services.Wrap(services.ErrTransient, "captions", "list", "boom", nil),
	}}}

	if _, ok := newTestStrategy(lister, nil, 5).Resolve(ctx, "abc12345678", []string{"en"}); ok {
		t.Fatal("expected absence under canceled context")
	}
	if lister.calls != 1 {
		t.Fatalf("listing called %d times after cancellation, want 1", lister.calls)
	}
}

func TestEmptyPreferenceDefaultsToEnglish(t *testing.T) {
	lister := &fakeLister{results: []listResult{{
		tracks: []Track{staticTrack("en", OriginManual, false, snips("default english"), nil)},
	}}}

	text, ok := newTestStrategy(lister, nil, 3).Resolve(context.Background(), "abc12345678", nil)
	if !ok || text != "default english" {
		t.Fatalf("got (%q, %v), want english default", text, ok)
	}
}

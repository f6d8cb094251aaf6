package captions

import (
	"context"
	"fmt"
	"time"
)

// Origin distinguishes human-authored tracks from platform-generated ones.
type Origin string

const (
	OriginManual Origin = "manual"
	OriginAuto   Origin = "auto-generated"
)

// Snippet is one timed caption line. Timing is carried for completeness but
// discarded when snippets are joined into a transcript.
type Snippet struct {
	Text     string
	Start    time.Duration
	Duration time.Duration
}

// FetchFunc retrieves a track's snippets. A non-empty translateTo requests
// server-side translation into that language.
type FetchFunc func(ctx context.Context, translateTo string) ([]Snippet, error)

// Track describes one caption track in a video's directory listing.
type Track struct {
	// Language is the declared language code, possibly a full BCP-47 tag.
	Language string
	// Name is the human-readable track label, when the provider supplies one.
	Name         string
	Origin       Origin
	Translatable bool

	fetch FetchFunc
}

// NewTrack builds a track backed by the given fetch function.
func NewTrack(lang, name string, origin Origin, translatable bool, fetch FetchFunc) Track {
	return Track{
		Language:     lang,
		Name:         name,
		Origin:       origin,
		Translatable: translatable,
		fetch:        fetch,
	}
}

// Fetch retrieves the track's snippets in their declared language.
func (t Track) Fetch(ctx context.Context) ([]Snippet, error) {
	if t.fetch == nil {
		return nil, fmt.Errorf("track %q: no fetcher", t.Language)
	}
	return t.fetch(ctx, "")
}

// Translate retrieves the track translated into lang.
func (t Track) Translate(ctx context.Context, lang string) ([]Snippet, error) {
	if !t.Translatable {
		return nil, fmt.Errorf("track %q is not translatable", t.Language)
	}
	if t.fetch == nil {
		return nil, fmt.Errorf("track %q: no fetcher", t.Language)
	}
	return t.fetch(ctx, lang)
}

// Lister is the caption directory boundary: it lists the tracks available
// for a video. Implementations tag definitive absence with
// services.ErrUnavailable; every other failure is treated as transient.
type Lister interface {
	List(ctx context.Context, videoID string) ([]Track, error)
}

// Detector reports the language of a caption text sample as an ISO 639-1
// code. Implementations are optional capabilities; a nil Detector disables
// the detection tier entirely.
type Detector interface {
	DetectLanguage(sample string) (string, bool)
}

package captions

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

const (
	watchPageBase = "https://www.youtube.com"
	userAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"

	captionsMarker     = `"captions":`
	videoDetailsMarker = `,"videoDetails`
)

// YouTubeClient lists caption tracks by scraping the player response embedded
// in a video's watch page and fetching timedtext documents in json3 format.
type YouTubeClient struct {
	httpClient *http.Client
	base       string
	logger     *slog.Logger
}

// NewYouTubeClient constructs a caption directory client.
func NewYouTubeClient(logger *slog.Logger) *YouTubeClient {
	return &YouTubeClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		base:       watchPageBase,
		logger:     logging.NewComponentLogger(logger, "captions"),
	}
}

// WithHTTPClient sets a custom HTTP client (for testing).
func (c *YouTubeClient) WithHTTPClient(client *http.Client) *YouTubeClient {
	c.httpClient = client
	return c
}

// WithBase sets a custom watch page origin (for testing).
func (c *YouTubeClient) WithBase(base string) *YouTubeClient {
	c.base = strings.TrimSuffix(base, "/")
	return c
}

type captionTrackJSON struct {
	BaseURL string `json:"baseUrl"`
	Name    struct {
		SimpleText string `json:"simpleText"`
	} `json:"name"`
	LanguageCode   string `json:"languageCode"`
	Kind           string `json:"kind"`
	IsTranslatable bool   `json:"isTranslatable"`
}

type captionsJSON struct {
	PlayerCaptionsTracklistRenderer struct {
		CaptionTracks []captionTrackJSON `json:"captionTracks"`
	} `json:"playerCaptionsTracklistRenderer"`
}

// List implements Lister. Definitive absence (captions disabled, no tracks,
// video gone) is tagged services.ErrUnavailable; network, status, and parse
// failures are tagged services.ErrTransient.
func (c *YouTubeClient) List(ctx context.Context, videoID string) ([]Track, error) {
	body, err := c.get(ctx, c.base+"/watch?v="+url.QueryEscape(videoID))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "captions", "list", "fetch watch page", err)
	}

	page := string(body)
	idx := strings.Index(page, captionsMarker)
	if idx < 0 {
		if strings.Contains(page, `class="g-recaptcha"`) {
			return nil, services.Wrap(services.ErrTransient, "captions", "list", "rate limited by captcha challenge", nil)
		}
		if !strings.Contains(page, `"playabilityStatus":`) {
			return nil, services.Wrap(services.ErrUnavailable, "captions", "list", fmt.Sprintf("video %s unavailable", videoID), nil)
		}
		return nil, services.Wrap(services.ErrUnavailable, "captions", "list", fmt.Sprintf("captions disabled for video %s", videoID), nil)
	}

	section := page[idx+len(captionsMarker):]
	end := strings.Index(section, videoDetailsMarker)
	if end < 0 {
		return nil, services.Wrap(services.ErrTransient, "captions", "list", "player response missing video details marker", nil)
	}

	var payload captionsJSON
	if err := json.Unmarshal([]byte(section[:end]), &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "captions", "list", "parse caption track list", err)
	}

	raw := payload.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(raw) == 0 {
		return nil, services.Wrap(services.ErrUnavailable, "captions", "list", fmt.Sprintf("no caption tracks for video %s", videoID), nil)
	}

	tracks := make([]Track, 0, len(raw))
	for _, t := range raw {
		origin := OriginManual
		if t.Kind == "asr" {
			origin = OriginAuto
		}
		baseURL := t.BaseURL
		tracks = append(tracks, NewTrack(t.LanguageCode, t.Name.SimpleText, origin, t.IsTranslatable,
			func(ctx context.Context, translateTo string) ([]Snippet, error) {
				return c.fetchTimedText(ctx, baseURL, translateTo)
			}))
	}

	c.logger.Debug("listed caption tracks",
		logging.String(logging.FieldVideoID, videoID),
		logging.Int("tracks", len(tracks)),
	)
	return tracks, nil
}

type timedTextJSON struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

func (c *YouTubeClient) fetchTimedText(ctx context.Context, baseURL, translateTo string) ([]Snippet, error) {
	target := baseURL + "&fmt=json3"
	if translateTo != "" {
		target += "&tlang=" + url.QueryEscape(translateTo)
	}

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "captions", "fetch", "fetch timedtext", err)
	}

	var payload timedTextJSON
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "captions", "fetch", "parse timedtext", err)
	}

	snippets := make([]Snippet, 0, len(payload.Events))
	for _, event := range payload.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(sb.String())
		if text == "" {
			continue
		}
		snippets = append(snippets, Snippet{
			Text:     text,
			Start:    time.Duration(event.StartMs) * time.Millisecond,
			Duration: time.Duration(event.DurationMs) * time.Millisecond,
		})
	}
	return snippets, nil
}

func (c *YouTubeClient) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

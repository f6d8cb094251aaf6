package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
	"ytscribe/internal/transcriptcache"
)

type fakeCaptions struct {
	text  string
	ok    bool
	calls int
}

func (f *fakeCaptions) Resolve(ctx context.Context, videoID string, preferences []string) (string, bool) {
	f.calls++
	return f.text, f.ok
}

type fakeDownloader struct {
	err      error
	calls    int
	lastURL  string
	lastDir  string
	fileName string
}

func (f *fakeDownloader) Download(ctx context.Context, videoURL, destDir string) (string, error) {
	f.calls++
	f.lastURL = videoURL
	f.lastDir = destDir
	if f.err != nil {
		return "", f.err
	}
	name := f.fileName
	if name == "" {
		name = "audio.m4a"
	}
	path := filepath.Join(destDir, name)
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct {
	text        string
	err         error
	calls       int
	unavailable bool
}

func (f *fakeTranscriber) Available() bool {
	return !f.unavailable
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, source, outputDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

type fakeCache struct {
	entries   map[string]transcriptcache.Entry
	lookupErr error
	saveErr   error
	saves     int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]transcriptcache.Entry)}
}

func (f *fakeCache) Lookup(ctx context.Context, videoID string) (transcriptcache.Entry, bool, error) {
	if f.lookupErr != nil {
		return transcriptcache.Entry{}, false, f.lookupErr
	}
	entry, found := f.entries[videoID]
	return entry, found, nil
}

func (f *fakeCache) Save(ctx context.Context, entry transcriptcache.Entry) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.entries[entry.VideoID] = entry
	return nil
}

func newTestPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	if opts.WorkRoot == "" {
		opts.WorkRoot = t.TempDir()
	}
	p, err := New(opts, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func remainingWorkDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read work root: %v", err)
	}
	var dirs []string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "yt_audio_") {
			dirs = append(dirs, entry.Name())
		}
	}
	return dirs
}

func TestCaptionHitSkipsDownloader(t *testing.T) {
	captions := &fakeCaptions{text: "Hello world", ok: true}
	downloader := &fakeDownloader{}
	transcriber := &fakeTranscriber{}

	p := newTestPipeline(t, Options{
		Captions:    captions,
		Downloader:  downloader,
		Transcriber: transcriber,
	})

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "Hello world" || result.Source != SourceCaptions {
		t.Fatalf("result = %+v", result)
	}
	if downloader.calls != 0 || transcriber.calls != 0 {
		t.Fatalf("fallback ran despite caption hit: downloads=%d transcriptions=%d",
			downloader.calls, transcriber.calls)
	}
}

func TestFallbackTranscribesDownloadedAudio(t *testing.T) {
	root := t.TempDir()
	downloader := &fakeDownloader{}
	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  downloader,
		Transcriber: &fakeTranscriber{text: "spoken words"},
		WorkRoot:    root,
	})

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "spoken words" || result.Source != SourceSTT {
		t.Fatalf("result = %+v", result)
	}
	if downloader.lastURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("download URL = %q", downloader.lastURL)
	}
	if !strings.HasPrefix(filepath.Base(downloader.lastDir), "yt_audio_") {
		t.Fatalf("download dir %q not an ephemeral work dir", downloader.lastDir)
	}
	if dirs := remainingWorkDirs(t, root); len(dirs) != 0 {
		t.Fatalf("work dirs left behind: %v", dirs)
	}
}

func TestDownloadFailureCleansWorkDir(t *testing.T) {
	root := t.TempDir()
	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  &fakeDownloader{err: services.Wrap(services.ErrExternalTool, "audio", "download", "transfer failed", nil)},
		Transcriber: &fakeTranscriber{},
		WorkRoot:    root,
	})

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if dirs := remainingWorkDirs(t, root); len(dirs) != 0 {
		t.Fatalf("work dirs left behind after failure: %v", dirs)
	}
}

func TestTranscriptionFailureCleansWorkDir(t *testing.T) {
	root := t.TempDir()
	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  &fakeDownloader{},
		Transcriber: &fakeTranscriber{err: services.Wrap(services.ErrConfiguration, "stt", "transcribe", "uvx not installed", nil)},
		WorkRoot:    root,
	})

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if dirs := remainingWorkDirs(t, root); len(dirs) != 0 {
		t.Fatalf("work dirs left behind after failure: %v", dirs)
	}
}

func TestCacheHitShortCircuitsEverything(t *testing.T) {
	cache := newFakeCache()
	cache.entries["dQw4w9WgXcQ"] = transcriptcache.Entry{
		VideoID: "dQw4w9WgXcQ",
		Source:  SourceCaptions,
		Text:    "cached text",
	}
	captions := &fakeCaptions{text: "fresh text", ok: true}

	p := newTestPipeline(t, Options{
		Captions:    captions,
		Downloader:  &fakeDownloader{},
		Transcriber: &fakeTranscriber{},
		Cache:       cache,
	})

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Text != "cached text" || result.Source != SourceCaptions {
		t.Fatalf("result should keep the cached provenance: %+v", result)
	}
	if captions.calls != 0 {
		t.Fatal("caption resolver ran despite cache hit")
	}
}

func TestCacheHitKeepsSpeechProvenance(t *testing.T) {
	cache := newFakeCache()
	cache.entries["abc12345678"] = transcriptcache.Entry{
		VideoID: "abc12345678",
		Source:  SourceSTT,
		Text:    "spoken words",
	}

	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  &fakeDownloader{},
		Transcriber: &fakeTranscriber{},
		Cache:       cache,
	})

	result, err := p.Run(context.Background(), "abc12345678")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Source != SourceSTT {
		t.Fatalf("source = %q, want %q", result.Source, SourceSTT)
	}
}

func TestCaptionResultIsCached(t *testing.T) {
	cache := newFakeCache()
	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{text: "Hello world", ok: true},
		Downloader:  &fakeDownloader{},
		Transcriber: &fakeTranscriber{},
		Cache:       cache,
	})

	if _, err := p.Run(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	entry, ok := cache.entries["dQw4w9WgXcQ"]
	if !ok || entry.Text != "Hello world" || entry.Source != SourceCaptions {
		t.Fatalf("cache entry = %+v found=%v", entry, ok)
	}
}

func TestCacheFailuresAreNonFatal(t *testing.T) {
	cache := newFakeCache()
	cache.lookupErr = errors.New("database is locked")
	cache.saveErr = errors.New("database is locked")

	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{text: "Hello world", ok: true},
		Downloader:  &fakeDownloader{},
		Transcriber: &fakeTranscriber{},
		Cache:       cache,
	})

	result, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Run should ignore cache errors: %v", err)
	}
	if result.Text != "Hello world" {
		t.Fatalf("result = %+v", result)
	}
	if cache.saves != 1 {
		t.Fatalf("expected one attempted save, got %d", cache.saves)
	}
}

func TestUnavailableTranscriberSkipsDownload(t *testing.T) {
	root := t.TempDir()
	downloader := &fakeDownloader{}
	transcriber := &fakeTranscriber{unavailable: true}

	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  downloader,
		Transcriber: transcriber,
		WorkRoot:    root,
	})

	_, err := p.Run(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if downloader.calls != 0 {
		t.Fatalf("downloader ran %d times despite missing transcriber", downloader.calls)
	}
	if transcriber.calls != 0 {
		t.Fatal("transcriber ran despite reporting unavailable")
	}
	if dirs := remainingWorkDirs(t, root); len(dirs) != 0 {
		t.Fatalf("work dirs created despite missing transcriber: %v", dirs)
	}
}

func TestCancelledContextStopsBeforeFallback(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	downloader := &fakeDownloader{}
	p := newTestPipeline(t, Options{
		Captions:    &fakeCaptions{},
		Downloader:  downloader,
		Transcriber: &fakeTranscriber{},
	})

	_, err := p.Run(ctx, "dQw4w9WgXcQ")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if downloader.calls != 0 {
		t.Fatal("downloader ran under a cancelled context")
	}
}

func TestNewRequiresCapabilities(t *testing.T) {
	_, err := New(Options{Downloader: &fakeDownloader{}, Transcriber: &fakeTranscriber{}}, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for missing caption resolver")
	}
	_, err = New(Options{Captions: &fakeCaptions{}, Transcriber: &fakeTranscriber{}}, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for missing downloader")
	}
	_, err = New(Options{Captions: &fakeCaptions{}, Downloader: &fakeDownloader{}}, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for missing transcriber")
	}
}

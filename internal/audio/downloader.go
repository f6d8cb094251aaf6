package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"ytscribe/internal/logging"
	"ytscribe/internal/services"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner func(ctx context.Context, name string, args ...string) (string, error)

// Downloader fetches the audio stream of a video with yt-dlp into a caller
// provided working directory. The original container and codec are kept as-is;
// transcoding would only add latency the transcriber does not need.
type Downloader struct {
	binary         string
	maxFileSizeMiB int
	runner         CommandRunner
	logger         *slog.Logger
}

// NewDownloader creates an audio downloader. maxFileSizeMiB bounds the
// preferred stream size; larger streams are still accepted when nothing
// smaller exists.
func NewDownloader(binary string, maxFileSizeMiB int, logger *slog.Logger) *Downloader {
	if binary == "" {
		binary = "yt-dlp"
	}
	if maxFileSizeMiB < 1 {
		maxFileSizeMiB = 20
	}
	return &Downloader{
		binary:         binary,
		maxFileSizeMiB: maxFileSizeMiB,
		logger:         logging.NewComponentLogger(logger, "audio"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (d *Downloader) WithCommandRunner(runner CommandRunner) *Downloader {
	d.runner = runner
	return d
}

// Download fetches the smallest adequate audio stream for videoURL into
// destDir and returns the downloaded file's path. It fails when no audio
// stream exists, the transfer fails, or the reported file is missing.
func (d *Downloader) Download(ctx context.Context, videoURL, destDir string) (string, error) {
	args := d.buildArgs(videoURL, destDir)

	d.logger.Info("downloading audio",
		logging.String("url", videoURL),
		logging.String("format", d.formatSelector()),
	)

	output, err := d.run(ctx, d.binary, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", services.Wrap(services.ErrConfiguration, "audio", "download", fmt.Sprintf("%s not installed", d.binary), err)
		}
		return "", services.Wrap(services.ErrExternalTool, "audio", "download", "yt-dlp transfer failed", err)
	}

	path := reportedPath(output)
	if path == "" {
		return "", services.Wrap(services.ErrExternalTool, "audio", "download", "yt-dlp reported no output file", nil)
	}

	// yt-dlp exiting zero does not guarantee the file landed.
	info, err := os.Stat(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "audio", "download", fmt.Sprintf("output file %s missing after download", path), err)
	}

	d.logger.Info("audio downloaded",
		logging.String("path", path),
		logging.String("size", humanize.IBytes(uint64(info.Size()))),
	)
	return path, nil
}

// formatSelector prefers compressed audio under the size ceiling, then the
// best audio of any size, then whatever stream remains.
func (d *Downloader) formatSelector() string {
	return fmt.Sprintf("bestaudio[filesize<%dM]/bestaudio/best", d.maxFileSizeMiB)
}

func (d *Downloader) buildArgs(videoURL, destDir string) []string {
	return []string{
		"--format", d.formatSelector(),
		"--output", filepath.Join(destDir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
		"--quiet",
		"--no-progress",
		"--no-simulate",
		"--print", "after_move:filepath",
		videoURL,
	}
}

func (d *Downloader) run(ctx context.Context, name string, args ...string) (string, error) {
	if d.runner != nil {
		return d.runner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(output), nil
}

// reportedPath extracts the final file path from yt-dlp's --print output.
func reportedPath(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

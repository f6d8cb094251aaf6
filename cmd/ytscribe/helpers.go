package main

import (
	"fmt"
	"regexp"
	"strings"

	"ytscribe/internal/config"
)

var (
	videoIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	watchURLPattern = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|embed/|shorts/|live/|v/)|youtu\.be/)([A-Za-z0-9_-]{11})`)
)

// parseVideoArg accepts either a bare 11-character video ID or any of the
// common YouTube URL shapes and returns the video ID.
func parseVideoArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("video ID or URL required")
	}
	if videoIDPattern.MatchString(arg) {
		return arg, nil
	}
	if match := watchURLPattern.FindStringSubmatch(arg); match != nil {
		return match[1], nil
	}
	return "", fmt.Errorf("could not extract a video ID from %q", arg)
}

func expandOutputPath(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}
	return expanded, nil
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable marks definitive absence: captions disabled, no tracks,
	// or a video that no longer exists. Never retried.
	ErrUnavailable = errors.New("unavailable")
	// ErrTransient marks faults worth retrying: network hiccups, bad HTTP
	// statuses, parse failures on otherwise healthy responses.
	ErrTransient = errors.New("transient failure")
	// ErrExternalTool marks failures of external processes or services
	// (yt-dlp transfer, whisper decode).
	ErrExternalTool = errors.New("external tool error")
	// ErrConfiguration marks a deployment problem: a required optional
	// capability is not installed or not usable.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Definitive reports whether err represents definitive absence rather than a
// fault worth retrying.
func Definitive(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

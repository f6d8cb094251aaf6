// Package pipeline orchestrates transcript acquisition for a single video:
// cache, then caption tracks, then the yt-dlp and whisper fallback. Scratch
// files for the fallback live in an ephemeral per-run directory that is
// always cleaned up.
package pipeline

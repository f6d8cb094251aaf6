// Package transcriptcache stores resolved transcripts in a local SQLite
// database keyed by video ID. Cache failures are advisory: callers log and
// continue, they never fail a transcription run over the cache.
package transcriptcache

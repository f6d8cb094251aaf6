// Package stt transcribes downloaded audio to plain text with whisper when a
// video has no usable captions. The capability is optional: its absence is a
// deployment fact surfaced as a configuration error, not a content fact.
package stt

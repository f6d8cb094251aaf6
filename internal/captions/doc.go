// Package captions resolves a transcript from a video's caption tracks.
//
// The directory client lists tracks with their language, origin, and
// translatability; the strategy walks four tiers in strict priority order:
// manual tracks, auto-generated tracks, server-side translation, and
// language detection over mislabeled tracks. "No captions" is an ordinary
// outcome here, not an error.
package captions

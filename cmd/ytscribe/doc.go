// Command ytscribe fetches plain-text transcripts for YouTube videos,
// preferring published caption tracks and falling back to local whisper
// transcription of the downloaded audio.
package main

// Package services defines the shared error taxonomy for the transcript
// pipeline. Components tag failures with sentinel markers so callers can
// classify them with errors.Is instead of matching message text.
package services

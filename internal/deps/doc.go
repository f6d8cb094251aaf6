// Package deps checks the external binaries the audio fallback path needs.
package deps

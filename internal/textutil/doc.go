// Package textutil provides small text normalization helpers shared across
// the pipeline.
package textutil

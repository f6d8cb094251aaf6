// Package audio downloads a size-bounded compressed audio stream for a video
// into scoped ephemeral storage, preserving the source container and codec.
package audio

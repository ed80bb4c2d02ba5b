// Package stt defines the Provider interface for speech-to-text backends.
//
// The pipeline segments inbound audio into complete utterances before
// transcription, so the contract is batch: one WAV container in, one
// transcript out. Providers receive mono 16 kHz 16-bit PCM wrapped by
// audio.WrapWAV.
//
// Implementations must be safe for concurrent use — multiple calls may
// transcribe simultaneously.
package stt

import (
	"context"
	"errors"
)

// ErrEmptyTranscription is returned when the backend produced no usable text
// for an utterance. Callers skip the turn silently; the caller's audio was
// most likely background noise.
var ErrEmptyTranscription = errors.New("stt: no speech recognised")

// Provider is the abstraction over any batch STT backend.
type Provider interface {
	// Name identifies the backend as "provider/model" for logging and metrics.
	Name() string

	// Transcribe submits a complete WAV container and returns the recognised
	// text. language is a BCP-47 hint ("en", "es", "hi"); empty lets the
	// provider auto-detect. Whitespace-only results fail with
	// [ErrEmptyTranscription].
	Transcribe(ctx context.Context, wav []byte, language string) (string, error)
}

// Package tts defines the Provider interface for text-to-speech backends.
//
// Providers return telephony-ready audio: mono 16-bit PCM at 8 kHz, which
// the caller compands to μ-law before transmission. Decoding and resampling
// of whatever compressed format the vendor serves (typically MP3) happens
// inside the provider.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Name identifies the backend as "provider/model" for logging and metrics.
	Name() string

	// Synthesize renders text as speech in the given language ("en", "es",
	// "hi", …) and returns mono 16-bit PCM samples at 8 kHz. Unknown language
	// codes fall back to the provider's default voice.
	Synthesize(ctx context.Context, text, language string) ([]int16, error)
}

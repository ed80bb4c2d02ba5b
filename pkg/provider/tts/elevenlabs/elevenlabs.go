// Package elevenlabs provides an ElevenLabs-backed TTS provider using the
// ElevenLabs REST text-to-speech API. It implements the tts.Provider
// interface: each synthesis request returns a complete MP3 which is decoded,
// downmixed and resampled to 8 kHz mono PCM.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io/v1"
	defaultModel   = "eleven_turbo_v2_5"
	defaultTimeout = 30 * time.Second
)

// Voice describes an ElevenLabs voice and the settings used with it.
type Voice struct {
	ID              string
	Stability       float64
	SimilarityBoost float64
}

// defaultVoices maps language codes to the voice used for that language.
// Unknown languages fall back to the "en" entry.
var defaultVoices = map[string]Voice{
	"en": {ID: "XB0fDUnXU5powFXDhCwa", Stability: 0.5, SimilarityBoost: 0.75},
	"es": {ID: "XB0fDUnXU5powFXDhCwa", Stability: 0.6, SimilarityBoost: 0.8},
	"hi": {ID: "21m00Tcm4TlvDq8ikWAM", Stability: 0.6, SimilarityBoost: 0.8},
	"sr": {ID: "TxGEqnHWrfWFTfGW9XjX", Stability: 0.5, SimilarityBoost: 0.75},
}

// Option is a functional option for configuring the ElevenLabs Provider.
type Option func(*Provider)

// WithModel sets the ElevenLabs model ID (e.g., "eleven_turbo_v2_5").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL overrides the API base URL. Useful for testing.
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithVoice sets or overrides the voice used for a language code.
func WithVoice(language string, voice Voice) Option {
	return func(p *Provider) {
		p.voices[language] = voice
	}
}

// Provider implements tts.Provider backed by the ElevenLabs REST API.
type Provider struct {
	apiKey     string
	model      string
	baseURL    string
	voices     map[string]Voice
	httpClient *http.Client
}

// New creates a new ElevenLabs Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		model:      defaultModel,
		baseURL:    defaultBaseURL,
		voices:     make(map[string]Voice, len(defaultVoices)),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for lang, v := range defaultVoices {
		p.voices[lang] = v
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "elevenlabs/" + p.model
}

// voiceSettings mirrors the ElevenLabs voice_settings object.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// synthRequest is the JSON body posted to /text-to-speech/{voice_id}.
type synthRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// voiceFor returns the voice for a language, falling back to English.
func (p *Provider) voiceFor(language string) Voice {
	if v, ok := p.voices[language]; ok {
		return v
	}
	return p.voices["en"]
}

// Synthesize implements tts.Provider. It posts the text to the ElevenLabs
// REST API, receives an MP3 response and converts it to 8 kHz mono PCM.
func (p *Provider) Synthesize(ctx context.Context, text, language string) ([]int16, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("elevenlabs: text must not be empty")
	}
	voice := p.voiceFor(language)

	body, err := json.Marshal(synthRequest{
		Text:    text,
		ModelID: p.model,
		VoiceSettings: voiceSettings{
			Stability:       voice.Stability,
			SimilarityBoost: voice.SimilarityBoost,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: marshal request: %w", err)
	}

	url := p.baseURL + "/text-to-speech/" + voice.ID
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: build request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("elevenlabs: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	mp3Data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: read response: %w", err)
	}

	pcm, err := decodeMP3To8k(mp3Data)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: decode audio: %w", err)
	}
	return pcm, nil
}

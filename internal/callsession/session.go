package callsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/executiveusa/synthia/internal/dispatch"
	"github.com/executiveusa/synthia/internal/observe"
	"github.com/executiveusa/synthia/internal/reasoning"
	"github.com/executiveusa/synthia/pkg/audio"
	"github.com/executiveusa/synthia/pkg/memory"
	"github.com/executiveusa/synthia/pkg/provider/llm"
	"github.com/executiveusa/synthia/pkg/provider/stt"
	"github.com/executiveusa/synthia/pkg/provider/tts"
)

// State is the call lifecycle phase.
type State int

const (
	StateRinging State = iota
	StateConnected
	StateAwaitingInput
	StateProcessing
	StateSpeaking
	StateHangingUp
	StateComplete
)

// String returns the lowercase name of the state.
func (s State) String() string {
	switch s {
	case StateRinging:
		return "ringing"
	case StateConnected:
		return "connected"
	case StateAwaitingInput:
		return "awaiting_input"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	case StateHangingUp:
		return "hanging_up"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// defaultTeardownTimeout bounds the post-hangup flush so teardown cannot
// hang on a slow provider.
const defaultTeardownTimeout = 10 * time.Second

// conversationalFallbacks keep the dialogue moving when the reasoning engine
// returns an unexpected error.
var conversationalFallbacks = map[string]string{
	"en": "I understand. Could you tell me a bit more about what you're looking for?",
	"es": "Entiendo. ¿Me podrías platicar un poco más de lo que necesitas?",
	"hi": "Samajh gayi. Thoda aur bataiye aapko kya chahiye?",
}

// Config identifies one call and tunes its audio segmentation.
type Config struct {
	// CallSID is the transport-assigned call identifier.
	CallSID string
	// Caller is the caller's phone number, when the transport provides it.
	Caller string
	// Segmenter tunes utterance detection. Zero values use the defaults.
	Segmenter audio.SegmenterConfig
	// TeardownTimeout bounds final-flush processing on hangup. Default: 10s.
	TeardownTimeout time.Duration
}

// Deps are the services one session calls out to. Reasoning, STT and TTS are
// required; Memory, Dispatcher and Metrics are optional.
type Deps struct {
	Reasoning  *reasoning.Engine
	STT        stt.Provider
	TTS        tts.Provider
	Memory     memory.Store
	Dispatcher dispatch.Dispatcher
	Metrics    *observe.Metrics
	Extractor  *Extractor
	Logger     *slog.Logger
}

// Session is the per-call state machine. One Session owns one call; its
// methods must be called sequentially from the transport's read loop —
// frames are processed strictly in arrival order and there is no internal
// locking.
type Session struct {
	cfg  Config
	deps Deps
	seg  *audio.Segmenter
	log  *slog.Logger

	convo   *Context
	state   State
	playing bool

	clientID      int64
	clientName    string
	clientContext string
}

// New creates a Session in the Ringing state.
func New(cfg Config, deps Deps) (*Session, error) {
	if deps.Reasoning == nil {
		return nil, errors.New("callsession: reasoning engine is required")
	}
	if deps.STT == nil {
		return nil, errors.New("callsession: stt provider is required")
	}
	if deps.TTS == nil {
		return nil, errors.New("callsession: tts provider is required")
	}
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = defaultTeardownTimeout
	}
	if deps.Extractor == nil {
		deps.Extractor = NewExtractor()
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		cfg:   cfg,
		deps:  deps,
		seg:   audio.NewSegmenter(cfg.Segmenter),
		log:   log.With("call_sid", cfg.CallSID),
		convo: NewContext(),
		state: StateRinging,
	}, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Language returns the currently detected caller language.
func (s *Session) Language() string { return s.convo.Language }

// Conversation exposes the accumulated context, for tests and teardown
// reporting.
func (s *Session) Conversation() *Context { return s.convo }

// transition moves to the next state unless teardown has already begun.
func (s *Session) transition(to State) {
	if s.state == StateHangingUp || s.state == StateComplete {
		return
	}
	s.state = to
}

// Connect handles call start: the caller is identified against memory and a
// personalized greeting is synthesized. The returned chunks are outbound
// μ-law frames; an empty result means synthesis failed and the session went
// straight to awaiting input.
func (s *Session) Connect(ctx context.Context) ([][]byte, error) {
	s.state = StateConnected
	s.deps.Metrics.CallStarted(ctx)

	s.identifyCaller(ctx)

	greet := greeting(s.clientName, s.convo.Language)
	s.convo.AddTurn(llm.RoleAssistant, greet)
	s.persistTurn(ctx, llm.RoleAssistant, greet)

	chunks, err := s.synthesize(ctx, greet)
	if err != nil {
		s.log.Error("greeting synthesis failed", "error", err)
		s.transition(StateAwaitingInput)
		return nil, nil
	}
	s.playing = true
	s.transition(StateSpeaking)
	s.log.Info("greeting synthesized",
		"chunks", len(chunks),
		"client", s.clientName,
		"language", s.convo.Language)
	return chunks, nil
}

// HandleFrame processes one 20 ms inbound μ-law frame. While response audio
// is playing inbound audio is discarded (no barge-in). When the segmenter
// completes an utterance the full turn pipeline runs and the response audio
// is returned.
func (s *Session) HandleFrame(ctx context.Context, frame []byte) ([][]byte, error) {
	if s.playing {
		return nil, nil
	}
	utterance, ok := s.seg.AddFrame(frame)
	if !ok {
		return nil, nil
	}
	return s.processUtterance(ctx, utterance)
}

// HandleMark handles playback-complete notification from the transport.
func (s *Session) HandleMark(name string) {
	s.log.Debug("mark received", "name", name)
	s.playing = false
	if s.state == StateSpeaking {
		s.transition(StateAwaitingInput)
	}
}

// HandleDTMF records keypad input as a conversation note.
func (s *Session) HandleDTMF(digits string) {
	if digits == "" {
		return
	}
	s.log.Info("dtmf received", "digits", digits)
	s.convo.Notes = append(s.convo.Notes, "Caller pressed: "+digits)
}

// Hangup handles call teardown: trailing buffered audio is flushed and
// processed under a bounded timeout, final facts are persisted, and the
// assembled brief is submitted to the job dispatcher. Returns the dispatched
// job ID, or "" when there was nothing to dispatch.
func (s *Session) Hangup(ctx context.Context) (string, error) {
	s.state = StateHangingUp
	defer s.deps.Metrics.CallEnded(ctx)
	s.log.Info("call ended, flushing and dispatching")

	// The transport context is usually already cancelled at this point, but
	// the trailing audio still deserves a bounded processing attempt.
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.TeardownTimeout)
	defer cancel()

	if remaining, ok := s.seg.FlushRemaining(); ok {
		if _, err := s.processUtterance(tctx, remaining); err != nil {
			s.log.Warn("failed to process trailing audio", "error", err)
		}
	}

	s.persistFinalFacts(tctx)

	defer func() { s.state = StateComplete }()

	brief := s.convo.Brief()
	if strings.TrimSpace(brief) == "" || s.deps.Dispatcher == nil {
		return "", nil
	}

	jobID, err := s.deps.Dispatcher.Submit(tctx, dispatch.Job{
		Brief:   brief,
		Topic:   orDefault(s.convo.Niche, "saas"),
		Kind:    orDefault(s.convo.PageType, "landing"),
		CallSID: s.cfg.CallSID,
		Caller:  s.cfg.Caller,
	})
	if err != nil {
		s.log.Error("job dispatch failed", "error", err)
		return "", fmt.Errorf("dispatch brief: %w", err)
	}
	s.deps.Metrics.RecordJobDispatched(tctx)
	s.log.Info("pipeline job dispatched", "job_id", jobID)
	return jobID, nil
}

// processUtterance runs the full turn pipeline for one complete utterance:
// μ-law → 16 kHz WAV → STT → context extraction → reasoning → TTS → μ-law.
func (s *Session) processUtterance(ctx context.Context, mulaw []byte) ([][]byte, error) {
	ctx, span := observe.StartSpan(ctx, "call.turn")
	defer span.End()

	s.transition(StateProcessing)
	s.deps.Metrics.RecordUtterance(ctx, len(mulaw))
	turnStart := time.Now()

	text, ok := s.transcribe(ctx, mulaw)
	if !ok {
		s.transition(StateAwaitingInput)
		return nil, nil
	}
	s.log.Info("caller said", "text", clip(text, 120), "language", s.convo.Language)

	if lang := DetectLanguage(text); lang != s.convo.Language {
		s.log.Info("language switch", "from", s.convo.Language, "to", lang)
		s.convo.Language = lang
		s.persistClient(ctx, memory.ClientRecord{Language: lang})
	}

	s.convo.AddTurn(llm.RoleUser, text)
	s.persistTurn(ctx, llm.RoleUser, text)
	s.extract(ctx, text)

	reply := s.respond(ctx)
	s.convo.AddTurn(llm.RoleAssistant, reply)
	s.persistTurn(ctx, llm.RoleAssistant, reply)

	chunks, err := s.synthesize(ctx, reply)
	if err != nil {
		// The text turn is already recorded; the caller just gets silence
		// for this one reply.
		s.log.Error("tts failed", "error", err)
		s.transition(StateAwaitingInput)
		return nil, nil
	}
	s.playing = true
	s.transition(StateSpeaking)
	s.deps.Metrics.RecordStageDuration(ctx, "turn", time.Since(turnStart))
	return chunks, nil
}

// transcribe converts a μ-law utterance to text. The bool result is false
// when the turn should be discarded.
func (s *Session) transcribe(ctx context.Context, mulaw []byte) (string, bool) {
	pcm := audio.DecodeULaw(mulaw)
	pcm16k, err := audio.Resample(pcm, 8000, 16000)
	if err != nil {
		s.log.Error("resample failed", "error", err)
		return "", false
	}
	wav := audio.WrapWAV(pcm16k, 16000, 1)

	start := time.Now()
	text, err := s.deps.STT.Transcribe(ctx, wav, s.convo.Language)
	s.deps.Metrics.RecordStageDuration(ctx, "stt", time.Since(start))
	if err != nil {
		if errors.Is(err, stt.ErrEmptyTranscription) {
			return "", false
		}
		s.log.Error("stt failed", "provider", s.deps.STT.Name(), "error", err)
		s.deps.Metrics.RecordProviderError(ctx, s.deps.STT.Name(), "stt")
		return "", false
	}
	s.deps.Metrics.RecordProviderRequest(ctx, s.deps.STT.Name(), "stt", "ok")
	return text, strings.TrimSpace(text) != ""
}

// respond asks the reasoning engine for the next reply.
func (s *Session) respond(ctx context.Context) string {
	start := time.Now()
	reply, err := s.deps.Reasoning.Respond(ctx,
		s.convo.Turns, buildSystemPrompt(s.clientContext), s.convo.Language)
	s.deps.Metrics.RecordStageDuration(ctx, "llm", time.Since(start))
	if err != nil {
		s.log.Error("reasoning failed", "error", err)
		if fb, ok := conversationalFallbacks[s.convo.Language]; ok {
			return fb
		}
		return conversationalFallbacks["en"]
	}
	return reply
}

// synthesize renders text as outbound μ-law chunks in the session language.
func (s *Session) synthesize(ctx context.Context, text string) ([][]byte, error) {
	start := time.Now()
	pcm, err := s.deps.TTS.Synthesize(ctx, text, s.convo.Language)
	s.deps.Metrics.RecordStageDuration(ctx, "tts", time.Since(start))
	if err != nil {
		s.deps.Metrics.RecordProviderError(ctx, s.deps.TTS.Name(), "tts")
		return nil, err
	}
	s.deps.Metrics.RecordProviderRequest(ctx, s.deps.TTS.Name(), "tts", "ok")
	return audio.SplitFrames(audio.EncodeULaw(pcm), audio.OutboundChunkSize), nil
}

// identifyCaller loads or creates the caller's memory record.
func (s *Session) identifyCaller(ctx context.Context) {
	if s.deps.Memory == nil || s.cfg.Caller == "" {
		return
	}
	phone := normalizePhone(s.cfg.Caller)

	client, err := s.deps.Memory.FindClient(ctx, phone)
	switch {
	case err == nil:
		s.clientID = client.ID
		s.clientName = client.Name
		if client.Language != "" {
			s.convo.Language = client.Language
		}
		if summary, err := s.deps.Memory.ContextSummary(ctx, phone); err == nil {
			s.clientContext = summary
		}
		s.log.Info("recognized caller",
			"client", s.clientName, "language", s.convo.Language)
	case errors.Is(err, memory.ErrNotFound):
		created, err := s.deps.Memory.UpsertClient(ctx, memory.ClientRecord{Phone: phone})
		if err != nil {
			s.log.Warn("failed to register caller", "error", err)
			return
		}
		s.clientID = created.ID
		s.log.Info("new caller registered", "phone", phone)
	default:
		s.log.Warn("caller lookup failed", "error", err)
	}
}

// extract folds one utterance into context and persists any new facts.
func (s *Session) extract(ctx context.Context, text string) {
	s.deps.Extractor.UpdateContext(s.convo, text)
	ex := s.deps.Extractor.ExtractFacts(text)

	if ex.Name != "" {
		s.clientName = ex.Name
	}
	if ex.Name != "" || ex.Company != "" || s.convo.Niche != "" {
		s.persistClient(ctx, memory.ClientRecord{
			Name:    ex.Name,
			Company: ex.Company,
			Niche:   s.convo.Niche,
		})
	}
	for _, fact := range ex.Facts {
		s.persistFact(ctx, fact.Category, fact.Fact)
	}
}

// persistFinalFacts stores a summary of the call in long-term memory.
func (s *Session) persistFinalFacts(ctx context.Context) {
	if s.deps.Memory == nil || s.clientID == 0 {
		return
	}
	if s.convo.Niche != "" {
		s.persistFact(ctx, "project", "Interested in "+s.convo.Niche+" website")
	}
	if s.convo.PageType != "" {
		s.persistFact(ctx, "project", "Needs "+s.convo.PageType+" page")
	}
	for _, p := range s.convo.PatternsDiscussed {
		s.persistFact(ctx, "design", "Discussed pattern: "+p)
	}
	for _, pref := range s.convo.Preferences {
		s.persistFact(ctx, "preference", pref)
	}
	s.persistClient(ctx, memory.ClientRecord{
		Language: s.convo.Language,
		Niche:    s.convo.Niche,
	})
}

// Memory writes are best-effort: a storage hiccup must never break a live
// call, so failures are logged and swallowed.

func (s *Session) persistTurn(ctx context.Context, role, content string) {
	if s.deps.Memory == nil || s.clientID == 0 {
		return
	}
	err := s.deps.Memory.AppendTurn(ctx,
		s.clientID, s.cfg.CallSID, role, content, s.convo.Language)
	if err != nil {
		s.log.Warn("memory write failed", "error", err)
	}
}

func (s *Session) persistFact(ctx context.Context, category, fact string) {
	if s.deps.Memory == nil || s.clientID == 0 {
		return
	}
	if err := s.deps.Memory.AppendFact(ctx, s.clientID, category, fact); err != nil {
		s.log.Warn("fact write failed", "error", err)
	}
}

func (s *Session) persistClient(ctx context.Context, update memory.ClientRecord) {
	if s.deps.Memory == nil || s.cfg.Caller == "" {
		return
	}
	update.Phone = normalizePhone(s.cfg.Caller)
	if _, err := s.deps.Memory.UpsertClient(ctx, update); err != nil {
		s.log.Warn("client update failed", "error", err)
	}
}

// normalizePhone strips separators and ensures a leading plus.
func normalizePhone(phone string) string {
	clean := strings.NewReplacer(" ", "", "-", "").Replace(phone)
	if clean == "" {
		return "unknown"
	}
	if !strings.HasPrefix(clean, "+") {
		clean = "+" + clean
	}
	return clean
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func clip(s string, n int) string {
	if runes := []rune(s); len(runes) > n {
		return string(runes[:n])
	}
	return s
}

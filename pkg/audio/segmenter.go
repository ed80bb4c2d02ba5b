package audio

import "math"

// Segmenter defaults, tuned for phone-quality 8 kHz companded audio.
const (
	// DefaultMinUtteranceBytes is roughly one second of audio — shorter spans
	// rarely transcribe into anything usable.
	DefaultMinUtteranceBytes = 8000

	// DefaultMaxUtteranceBytes caps an utterance at roughly eight seconds.
	DefaultMaxUtteranceBytes = 64000

	// DefaultSilenceRMS is the RMS energy below which a frame counts as
	// silence.
	DefaultSilenceRMS = 500

	// DefaultTrailingSilenceFrames is the number of consecutive silent frames
	// (~300 ms at 20 ms per frame) that ends an utterance.
	DefaultTrailingSilenceFrames = 15
)

// SegmenterConfig tunes a [Segmenter]. Zero-value fields are replaced with the
// package defaults.
type SegmenterConfig struct {
	MinUtteranceBytes     int
	MaxUtteranceBytes     int
	SilenceRMS            float64
	TrailingSilenceFrames int
}

// Segmenter accumulates fixed-size inbound companded frames and emits a
// complete utterance once enough speech followed by enough trailing silence
// (or a hard size cap) has been observed.
//
// The detector is a plain short-term energy threshold with a fixed
// trailing-silence window: bounded work per frame, no lookahead. It trades
// occasional early or late cutoffs for predictable latency, which is the
// right trade for a turn-taking phone conversation.
//
// A Segmenter belongs to a single call and is not safe for concurrent use.
type Segmenter struct {
	minBytes       int
	maxBytes       int
	silenceRMS     float64
	trailingFrames int

	buf           []byte
	silenceRun    int
	speechSeen    bool
}

// NewSegmenter creates a [Segmenter] with the supplied configuration.
func NewSegmenter(cfg SegmenterConfig) *Segmenter {
	if cfg.MinUtteranceBytes <= 0 {
		cfg.MinUtteranceBytes = DefaultMinUtteranceBytes
	}
	if cfg.MaxUtteranceBytes <= 0 {
		cfg.MaxUtteranceBytes = DefaultMaxUtteranceBytes
	}
	if cfg.SilenceRMS <= 0 {
		cfg.SilenceRMS = DefaultSilenceRMS
	}
	if cfg.TrailingSilenceFrames <= 0 {
		cfg.TrailingSilenceFrames = DefaultTrailingSilenceFrames
	}
	return &Segmenter{
		minBytes:       cfg.MinUtteranceBytes,
		maxBytes:       cfg.MaxUtteranceBytes,
		silenceRMS:     cfg.SilenceRMS,
		trailingFrames: cfg.TrailingSilenceFrames,
	}
}

// AddFrame appends one companded frame to the accumulator and reports whether
// a complete utterance is ready. The returned buffer is owned by the caller;
// the segmenter resets its state on every flush.
func (s *Segmenter) AddFrame(frame []byte) ([]byte, bool) {
	s.buf = append(s.buf, frame...)

	if rms(DecodeULaw(frame)) < s.silenceRMS {
		s.silenceRun++
	} else {
		s.silenceRun = 0
		s.speechSeen = true
	}

	if len(s.buf) >= s.maxBytes {
		return s.flush(), true
	}
	if len(s.buf) >= s.minBytes && s.speechSeen && s.silenceRun >= s.trailingFrames {
		return s.flush(), true
	}
	return nil, false
}

// FlushRemaining returns whatever audio is still buffered, for processing on
// call teardown. Buffers of one frame or less are discarded as noise.
func (s *Segmenter) FlushRemaining() ([]byte, bool) {
	if len(s.buf) <= InboundFrameSize {
		return nil, false
	}
	return s.flush(), true
}

// BufferedBytes reports how much audio is currently accumulated.
func (s *Segmenter) BufferedBytes() int { return len(s.buf) }

func (s *Segmenter) flush() []byte {
	out := s.buf
	s.buf = nil
	s.silenceRun = 0
	s.speechSeen = false
	return out
}

// rms computes the root-mean-square energy of a span of samples.
func rms(pcm []int16) float64 {
	if len(pcm) == 0 {
		return 0
	}
	var sum float64
	for _, s := range pcm {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(pcm)))
}

package audio

import (
	"errors"
	"fmt"
)

// ErrUnsupportedRate is returned by [Resample] for any rate pair other than
// 8000↔16000 Hz. Requesting another conversion is a programming error, not a
// runtime condition.
var ErrUnsupportedRate = errors.New("audio: unsupported sample rate conversion")

// Resample converts mono PCM samples between 8 kHz and 16 kHz using linear
// interpolation. Sample ordering is preserved and the output count is
// proportional to the rate ratio (±1 sample for rounding). If from == to the
// input is returned unchanged.
func Resample(pcm []int16, from, to int) ([]int16, error) {
	if from == to && (from == 8000 || from == 16000) {
		return pcm, nil
	}
	switch {
	case from == 8000 && to == 16000, from == 16000 && to == 8000:
	default:
		return nil, fmt.Errorf("%w: %d -> %d Hz", ErrUnsupportedRate, from, to)
	}
	if len(pcm) == 0 {
		return nil, nil
	}

	dstSamples := int(int64(len(pcm)) * int64(to) / int64(from))
	if dstSamples == 0 {
		return nil, nil
	}

	out := make([]int16, dstSamples)
	ratio := float64(from) / float64(to)

	for i := range out {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := pcm[srcIdx]
		s1 := s0
		if srcIdx+1 < len(pcm) {
			s1 = pcm[srcIdx+1]
		}
		out[i] = int16(float64(s0)*(1-frac) + float64(s1)*frac)
	}
	return out, nil
}
